package main

import (
	"net/http"
	"os"
	"time"

	"med-scheduler/internal/adapters/auth/odin"
	"med-scheduler/internal/adapters/capabilities/plansfeatures"
	"med-scheduler/internal/platform/logger"
	"med-scheduler/internal/ports/auth"
	"med-scheduler/internal/ports/capabilities"
	"med-scheduler/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Verifier real solo si Odin está configurado; sin él, queda el modo dev
	// (header X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if base := os.Getenv("ODIN_BASE_URL"); base != "" {
		client, err := odin.NewClient(odin.Config{
			BaseURL: base,
			APIKey:  os.Getenv("ODIN_API_KEY"),
		})
		if err != nil {
			log.Error("odin client init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		verifier = odin.NewVerifier(client)
		log.Info("auth: odin", nil)
	} else {
		log.Info("auth: dev mode (X-Debug-User-ID)", nil)
	}

	var caps capabilities.Resolver
	if base := os.Getenv("PLANS_BASE_URL"); base != "" {
		client, err := plansfeatures.NewClient(plansfeatures.Config{
			BaseURL: base,
			APIKey:  os.Getenv("PLANS_API_KEY"),
		})
		if err != nil {
			log.Error("plans-features client init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		caps = plansfeatures.NewResolver(client)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Capabilities: caps,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
