package main

import (
	"time"

	"tycoon-market/src/engine"
	"tycoon-market/src/game"
	"tycoon-market/src/interfaces"
	"tycoon-market/src/logger"
	"tycoon-market/src/market"
	"tycoon-market/src/models"
	"tycoon-market/src/server"
	"tycoon-market/src/storage"
	"tycoon-market/src/utils"
)

// -----------------------------------------------------------------------------

// setupInstruments builds the instrument universe from config
func setupInstruments(config *models.MConfig) []*market.Instrument {
	instruments := make([]*market.Instrument, len(config.Stocks))
	for i, seed := range config.Stocks {
		sector := market.SectorOrDefault(config.Market.Sectors, seed.Sector)
		instruments[i] = market.NewInstrument(seed, sector, config.Market.HistoryCapacity)
	}
	return instruments
}

// -----------------------------------------------------------------------------

// setupScheduler wires the market engine around the instrument set
func setupScheduler(config *models.MConfig, instruments []*market.Instrument, rng interfaces.IRandomSource, appLogger *logger.Logger) *engine.TickScheduler {
	schedulerLogger := logger.NewLogger(config.LogLevel, "Scheduler")
	return engine.NewTickScheduler(instruments, rng, engine.Options{
		Mode:                config.Market.Mode,
		TickInterval:        time.Duration(config.Market.TickIntervalMs) * time.Millisecond,
		CorrelationStrength: config.Market.CorrelationStrength,
		EventProbability:    config.Events.Probability,
		EventPreset:         config.Events.Preset,
		GateToMarketHours:   config.Market.GateToMarketHours,
	}, utils.NewMarketHours(), schedulerLogger)
}

// -----------------------------------------------------------------------------

// setupServer wires game state and the websocket server onto the scheduler
func setupServer(config *models.MConfig, scheduler *engine.TickScheduler, rng interfaces.IRandomSource) *server.GameServer {
	gameLogger := logger.NewLogger(config.LogLevel, "Game")
	gameState := game.NewState(scheduler, rng, gameLogger)

	serverLogger := logger.NewLogger(config.LogLevel, "GameServer")
	srv := server.NewGameServer(config, scheduler, gameState, serverLogger)
	scheduler.Subscribe(srv)
	return srv
}

// -----------------------------------------------------------------------------

// setupRecording attaches the optional tick recorder; returns the backend for
// shutdown, or nil when recording is disabled
func setupRecording(config *models.MConfig, scheduler *engine.TickScheduler, appLogger *logger.Logger) (interfaces.IRecorder, error) {
	storageLogger := logger.NewLogger(config.LogLevel, "Storage")
	db, err := storage.NewRecorderForConfig(config, storageLogger)
	if err != nil || db == nil {
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		return nil, err
	}
	scheduler.Subscribe(storage.NewTickRecorder(db, storageLogger))
	appLogger.Info("Tick recording enabled (%s)", config.Storage.DBType)
	return db, nil
}
