package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/btcrunway/btcrunway/internal/app"
	log "github.com/sirupsen/logrus"
)

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		log.SetLevel(log.InfoLevel)
		return
	}
	logrusLevel, err := log.ParseLevel(level)
	if err != nil {
		log.Fatalf("invalid LOG_LEVEL %q: %v", level, err)
	}
	log.SetLevel(logrusLevel)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApplication()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	if err := application.Run(ctx); err != nil {
		log.Fatalf("btcrunway stopped: %v", err)
	}
}
