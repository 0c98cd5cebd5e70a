package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tycoon-market/src/config"
	"tycoon-market/src/engine"
	"tycoon-market/src/game"
	"tycoon-market/src/interfaces"
	"tycoon-market/src/logger"
	"tycoon-market/src/market"
	"tycoon-market/src/server"
	"tycoon-market/src/storage"
	"tycoon-market/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// Randomness: a fixed seed replays the exact same market
	var rng interfaces.IRandomSource
	if *seed != 0 {
		rng = market.NewSeededSource(*seed)
		appLogger.Info("Using fixed RNG seed %d", *seed)
	} else {
		rng = market.NewTimeSource()
	}

	// 2. Build the instrument universe from config
	instruments := make([]*market.Instrument, len(cfg.Stocks))
	for i, stockSeed := range cfg.Stocks {
		sector := market.SectorOrDefault(cfg.Market.Sectors, stockSeed.Sector)
		instruments[i] = market.NewInstrument(stockSeed, sector, cfg.Market.HistoryCapacity)
	}
	appLogger.Info("Loaded %d instruments", len(instruments))

	// 3. Market engine
	hours := utils.NewMarketHours()
	scheduler := engine.NewTickScheduler(instruments, rng, engine.Options{
		Mode:                cfg.Market.Mode,
		TickInterval:        time.Duration(cfg.Market.TickIntervalMs) * time.Millisecond,
		CorrelationStrength: cfg.Market.CorrelationStrength,
		EventProbability:    cfg.Events.Probability,
		EventPreset:         cfg.Events.Preset,
		GateToMarketHours:   cfg.Market.GateToMarketHours,
	}, hours, appLogger)

	// 4. Game state and server
	gameState := game.NewState(scheduler, rng, appLogger)
	srv := server.NewGameServer(cfg.MConfig, scheduler, gameState, appLogger)
	scheduler.Subscribe(srv)

	// 5. Optional tick recording
	db, err := storage.NewRecorderForConfig(cfg.MConfig, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init storage: %v", err)
	}
	if db != nil {
		if err := db.Initialize(); err != nil {
			appLogger.Critical("Failed to migrate storage: %v", err)
		}
		defer db.Close()
		scheduler.Subscribe(storage.NewTickRecorder(db, appLogger))
		appLogger.Info("Tick recording enabled (%s)", cfg.Storage.DBType)
	}

	// 6. Run
	scheduler.Start()

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	scheduler.Stop()
	srv.Stop()
}
