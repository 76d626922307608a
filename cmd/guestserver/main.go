package main

import (
	"errors"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/shravanasati/guestserver/internal/demo"
	"github.com/shravanasati/guestserver/middleware"
	"github.com/shravanasati/guestserver/server"
)

func main() {
	addr := flag.String("addr", ":8080", "address or port to listen on")
	color := flag.Bool("color", true, "colorize access logs")
	flag.Parse()

	accessLog := middleware.Logging(nil)
	if *color {
		accessLog = middleware.LoggingColored(nil)
	}

	app := server.New(server.ServerOpts{
		Address:   *addr,
		AccessLog: accessLog,
	})
	demo.Register(app)

	l, err := net.Listen("tcp", server.NormalizeAddress(*addr))
	if err != nil {
		log.Fatalf("Error starting server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Serve(l)
	}()
	log.Println("Server listening on", l.Addr())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server stopped: %v", err)
	case <-sigChan:
	}

	if err := app.Close(); err != nil {
		log.Println("unable to close listener:", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, server.ErrServerClosed) {
		log.Println("server stopped with error:", err)
	}
	log.Println("Server gracefully stopped")
}
