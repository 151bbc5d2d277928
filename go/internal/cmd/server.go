package main

import (
	"net/http"
	"time"

	"github.com/mcdev12/setrush/go/internal/game/gateway"
)

func setupServer(addr string, gw *gateway.Service) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
