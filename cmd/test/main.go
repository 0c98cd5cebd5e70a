package main

// End-to-end smoke harness: boots the full server stack in-process, connects
// a feed client over a real websocket, lets the market run for a few seconds
// and prints what the client observed.

import (
	"flag"
	"fmt"
	"os"
	"time"

	"tycoon-market/src/config"
	"tycoon-market/src/feed"
	"tycoon-market/src/interfaces"
	"tycoon-market/src/logger"
	"tycoon-market/src/market"
)

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	seed := flag.Int64("seed", 42, "RNG seed (0 = time-based)")
	runFor := flag.Duration("duration", 10*time.Second, "how long to run the smoke test")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	// 4. Randomness
	var rng interfaces.IRandomSource
	if *seed != 0 {
		rng = market.NewSeededSource(*seed)
		appLogger.Info("Using fixed RNG seed %d", *seed)
	} else {
		rng = market.NewTimeSource()
	}

	// 5. Setup Components
	instruments := setupInstruments(conf.MConfig)
	appLogger.Info("Loaded %d instruments", len(instruments))

	scheduler := setupScheduler(conf.MConfig, instruments, rng, appLogger)
	srv := setupServer(conf.MConfig, scheduler, rng)

	db, err := setupRecording(conf.MConfig, scheduler, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init storage: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// 6. Start the stack
	scheduler.Start()
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// Give gin a moment to bind before dialing
	time.Sleep(500 * time.Millisecond)

	// 7. Connect a feed client against the live server
	conf.Feed.ServerURL = fmt.Sprintf("ws://%s:%d/ws", conf.Host, conf.Port)
	feedLogger := logger.NewLogger(conf.LogLevel, "Feed")
	client := feed.NewClient(conf.MConfig, feedLogger)
	client.Start()

	appLogger.Info("Running smoke test for %v...", *runFor)
	time.Sleep(*runFor)

	// 8. Report what the consuming side saw
	quotes := client.Store().Quotes()
	appLogger.Info("Feed state: %s, ticks published: %d, symbols seen: %d",
		client.State(), scheduler.Seq(), len(quotes))
	for _, q := range quotes {
		history := client.Store().HistoryOf(q.Symbol)
		appLogger.Info("  %-6s %10.2f (%d history points)", q.Symbol, q.Price, len(history))
	}

	if len(quotes) == 0 {
		appLogger.Error("Smoke test failed: feed client saw no prices")
		os.Exit(1)
	}

	// 9. Shutdown
	client.Close()
	scheduler.Stop()
	srv.Stop()
	appLogger.Info("Smoke test complete.")
}
