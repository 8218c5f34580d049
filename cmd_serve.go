package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"reclamos/internal/config"
	"reclamos/internal/health"
	"reclamos/internal/intake"
	"reclamos/internal/render"
	"reclamos/internal/server"
	"reclamos/internal/storage"
	"reclamos/internal/telegram"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the complaint API, the bot surface and the health server",
	Long: `Starts three HTTP servers and the Telegram update loop:

  API     (HTTP_PORT, default 3000)         POST /complaints, POST /recibirreclamo, GET /complaints/latest
  Bot     (BOT_PORT or PORT, default 3008)  POST /v1/messages
  Health  (HEALTH_CHECK_PORT, default 8080) GET /health, GET /metrics

Stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	log.Println("🚀 Starting reclamos...")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log.Println("✓ Configuration loaded")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("📋 Opening record store...")
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Println("🤖 Initializing Telegram...")
	tg := telegram.NewClient(cfg)

	monitor := health.NewMonitor(cfg.StoreBackend, tg != nil)
	renderer := render.NewRenderer(store)
	intakeService := intake.NewService(store, tg, monitor)
	handlers := server.NewHandlers(intakeService, renderer, tg)

	servers := []struct {
		name string
		srv  *http.Server
	}{
		{"API", server.NewHTTPServer(cfg.HTTPPort, handlers.APIRoutes(cfg.CORSAllowedOrigins))},
		{"Bot", server.NewHTTPServer(cfg.BotPort, handlers.BotRoutes())},
		{"Health", health.NewServer(monitor, cfg.HealthCheckPort)},
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, s := range servers {
		s := s
		g.Go(func() error {
			log.Printf("✓ %s server listening on %s", s.name, s.srv.Addr)
			if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", s.name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		responder := telegram.NewKeywordResponder(cfg.BotKeyword, tg, renderer)
		tg.HandleUpdates(gctx, responder, cfg.BotWorkers)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("🛑 Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, s := range servers {
			if err := s.srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("%s server shutdown: %w", s.name, err))
			}
		}
		return errors.Join(errs...)
	})

	log.Println("═══════════════════════════════════════════════════════════")

	err = g.Wait()

	// Ops notifications run detached from their requests; let them finish
	// before the store closes.
	intakeService.Wait()

	if err != nil {
		log.Printf("❌ %v", err)
		return err
	}

	log.Println("✓ Stopped")
	return nil
}
