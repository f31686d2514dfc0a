package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peerchat/relay/internal/server"
)

const (
	httpShutdownTimeout = 10 * time.Second
	hubShutdownTimeout  = 5 * time.Second
)

func main() {
	log.Println("Starting PeerChat relay...")

	config := server.NewConfigFromEnv()
	server.SetConfig(config)

	server.StartHub()

	mux := server.SetupRoutes()
	httpServer := server.CreateServer(config.Port, mux)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		sig := <-sigCh
		log.Printf("Received %s, shutting down...", sig)

		if err := server.ShutdownServer(httpServer, httpShutdownTimeout); err != nil {
			log.Printf("HTTP shutdown incomplete: %v", err)
		}
		if err := server.GetHub().Shutdown(hubShutdownTimeout); err != nil {
			log.Printf("Hub shutdown incomplete: %v", err)
		}
	}()

	if err := server.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
