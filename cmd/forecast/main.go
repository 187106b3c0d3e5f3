// Command forecast serves the Rayleigh forecast HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/trackforge/defectcast/internal/platform/otel"
	"github.com/trackforge/defectcast/internal/services/forecast/app"
)

var port = flag.Int("port", 8090, "The API port")

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	shutdown, err := otel.Setup(ctx, "defectcast-forecast")
	if err != nil {
		log.Printf("otel setup: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	if err := app.Run(ctx, *port); err != nil {
		log.Fatalf("forecast server: %v", err)
	}
}
