// Package main is the entry point for the PDF Summarizer server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-summarizer/internal/config"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/handlers"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/metrics"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/middleware"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/router"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/pipeline"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/render"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/summary"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 PDF Summarizer %s starting...", Version)

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("📋 Config loaded: port=%s, provider=%s, gin_mode=%s, max_upload=%dMB",
		cfg.Port, cfg.SummaryProvider, cfg.GinMode, cfg.MaxUploadMB)

	applyGinMode(cfg.GinMode)

	// Step 2: Create the summary provider
	provider, closeProvider, err := newProvider(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create %s provider: %v", cfg.SummaryProvider, err)
	}
	defer closeProvider()

	if provider.Configured() {
		log.Printf("✅ Summaries enabled (%s, model %s)", provider.Name(), provider.Model())
	} else {
		log.Printf("⚠️  Summaries disabled: %s is not configured (set its API key or project)", provider.Name())
	}

	// Step 3: Create Services
	summarizer := summary.New(provider, cfg.SummaryTimeout, summary.BreakerConfig{
		FailureThreshold: cfg.BreakerFailureThreshold,
		OpenTimeout:      cfg.BreakerOpenTimeout,
	})
	m := metrics.New()
	pl := pipeline.New(pdf.NewExtractor(), summarizer, m, pipeline.Config{
		TempDir:      cfg.TempDir,
		MinTextChars: cfg.MinTextChars,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerHour)
	defer rateLimiter.Close()

	// Step 4: Setup HTTP Router
	h := handlers.NewHandler(pl, summarizer, render.New(), cfg.MaxUploadBytes())
	r := router.Setup(h, m, rateLimiter, cfg.AllowedOrigins)

	// Step 5: Start the HTTP Server
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		// Leave room for a slow model call on top of the upload.
		WriteTimeout: cfg.SummaryTimeout + 60*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 6: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	log.Println("👋 Server stopped. Goodbye!")
}

// applyGinMode switches gin to the configured mode. gin reads GIN_MODE only
// in its package init, before .env has been loaded, so setting the variable
// here would have no effect.
func applyGinMode(mode string) {
	gin.SetMode(mode)
}

// newProvider builds the provider selected by SUMMARY_PROVIDER. The returned
// func releases its resources and is always safe to call.
func newProvider(cfg *config.Config) (summary.Provider, func(), error) {
	switch cfg.SummaryProvider {
	case config.ProviderVertex:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		vp, err := summary.NewVertexProvider(ctx, cfg.VertexProjectID, cfg.VertexRegion, cfg.VertexModel, cfg.VertexCredentialsFile)
		if err != nil {
			return nil, func() {}, err
		}
		return vp, func() {
			if err := vp.Close(); err != nil {
				log.Printf("⚠️  Closing Vertex AI client: %v", err)
			}
		}, nil
	case config.ProviderOpenRouter:
		return summary.NewOpenRouterProvider(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL), func() {}, nil
	default:
		return summary.NewGeminiProvider(cfg.GoogleAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL), func() {}, nil
	}
}
