package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/wire"
	"github.com/rs/cors"
	"github.com/tandalabs/tanda-gateway/handler/api"
	"github.com/tandalabs/tanda-gateway/handler/hc"
	"github.com/tandalabs/tanda-gateway/handler/webhook"
)

var serverSet = wire.NewSet(
	api.New,
	webhook.New,
	provideServer,
)

func provideServer(apiHandler *api.Server, webhookHandler *webhook.Server) *http.Server {
	m := chi.NewMux()
	m.Use(middleware.RealIP)
	m.Use(middleware.Logger)
	m.Use(middleware.Recoverer)
	m.Use(cors.AllowAll().Handler)

	m.Mount("/api", apiHandler.Handler())
	m.Mount("/webhook", webhookHandler.Handler())
	m.Mount("/hc", hc.Handler(version))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", opt.port),
		Handler: m,
	}
}
