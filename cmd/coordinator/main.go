package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := server.InitServer(ctx); err != nil {
		log.Fatalf("Failed to start crawl coordinator: %v", err)
	}
}
