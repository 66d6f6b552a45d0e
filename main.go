package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"heropick/internal/config"
)

// CLI flags
var (
	configPath = flag.String("config", config.DefaultPath, "Path to config.toml")
	watchMode  = flag.Bool("watch", false, "Re-run recognition when capture images change")
	runOnce    = flag.Bool("once", false, "Run the pipeline once and exit")
	noHotkey   = flag.Bool("no-hotkey", false, "Do not register the Tab+1 hotkey")
)

func main() {
	flag.Parse()

	// Load .env
	envPaths := []string{".env", "../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			fmt.Printf("Loaded .env from: %s\n", path)
			break
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(cfg, *configPath)
	if err := app.startup(ctx); err != nil {
		log.Fatalf("Startup failed: %v", err)
	}
	defer app.shutdown()

	if *runOnce {
		if _, err := app.RunPipeline(ctx); err != nil {
			log.Fatalf("Pipeline failed: %v", err)
		}
		return
	}

	if *watchMode {
		go func() {
			if err := app.watchCaptures(ctx); err != nil {
				fmt.Printf("[Watch] %v\n", err)
			}
		}()
	}

	if !*noHotkey {
		app.RegisterPipelineHotkey()
	}

	fmt.Println("==================================================")
	fmt.Println(" HEROPICK STARTED")
	fmt.Println(" - Press TAB+1 (global) to run the pipeline from the main menu.")
	fmt.Println(" - Use the menu numbers and ENTER for the other commands.")
	fmt.Println("==================================================")

	if cfg.Player.Map != "" {
		app.showMapMeta(ctx)
	}

	done := make(chan struct{})
	go func() {
		app.runMenu(ctx, os.Stdin)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		fmt.Println("\nInterrupted.")
	}
	fmt.Println("Exiting.")
}
