package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/playmatatu/walltowall/internal/config"
	"github.com/playmatatu/walltowall/internal/physics"
	"github.com/playmatatu/walltowall/internal/scores"
	"github.com/playmatatu/walltowall/internal/tui"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	savePath := os.Getenv("SAVE_FILE")
	if savePath == "" {
		p, err := scores.DefaultSavePath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to locate save file: %v\n", err)
			os.Exit(1)
		}
		savePath = p
	}

	// the screen owns stdout; logs go next to the save file
	logPath := os.Getenv("LOG_FILE")
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(savePath), "play.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err == nil {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			defer f.Close()
			log.SetOutput(f)
		}
	}

	field := physics.Field{Width: cfg.FieldWidth, Height: cfg.FieldHeight, Thickness: cfg.WallThickness}
	if !field.Valid(physics.PrimaryRadius) {
		log.Printf("[GAME] Field %+v too small, using default", field)
		field = physics.DefaultField()
	}

	app, err := tui.New(tui.Options{
		Field:    field,
		Gravity:  cfg.Gravity,
		MaxFrame: cfg.MaxFrame(),
		Store:    scores.NewFileStore(savePath),
		Sound:    os.Getenv("SOUND") != "off",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("[GAME] Started, save file %s", savePath)
	app.Run(ctx)
}
