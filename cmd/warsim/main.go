// Command warsim runs the Warmarch medieval warfare simulation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/talgya/warmarch/internal/api"
	"github.com/talgya/warmarch/internal/config"
	"github.com/talgya/warmarch/internal/engine"
	"github.com/talgya/warmarch/internal/entropy"
	"github.com/talgya/warmarch/internal/persistence"
	"github.com/talgya/warmarch/internal/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Warmarch — Medieval Warfare Simulation", "seed", cfg.Seed)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Seed Campaign ─────────────────────────────────────────
	var campaign *engine.Campaign
	if db.HasCampaignState() {
		slog.Info("found saved campaign, loading...")

		resolver := world.NewMapResolver()
		campaign = engine.NewCampaign(cfg.Seed, resolver, engine.NewLocalTreasuries(), entropy.NewSeeded(cfg.Seed))
		if err := db.LoadCampaign(campaign); err != nil {
			slog.Error("failed to load campaign", "error", err)
			os.Exit(1)
		}

		slog.Info("campaign restored",
			"wars", len(campaign.Wars),
			"armies", len(campaign.Armies),
			"tick", campaign.LastTick,
			"sim_time", engine.SimTime(campaign.LastTick),
		)
	} else {
		slog.Info("no saved campaign found, raising the banners...")
		campaign = engine.NewDemoCampaign(cfg.Seed)

		if err := db.SaveCampaign(campaign); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Tick = campaign.LastTick
	eng.SetSpeed(cfg.Speed)

	eng.OnTick = campaign.TickDay
	eng.OnWeek = func(tick uint64) {
		campaign.TickWeek(tick)
		// Auto-save weekly.
		if err := db.SaveCampaign(campaign); err != nil {
			slog.Error("weekly save failed", "error", err)
		}
	}
	eng.OnSeason = campaign.TickSeason

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("WARSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Campaign: campaign,
		Eng:      eng,
		DB:       db,
		Port:     cfg.APIPort,
		AdminKey: cfg.AdminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nThe realm is at war: %d wars, %d armies in the field.\n",
		len(campaign.Wars), len(campaign.Armies))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	if campaign.LastTick > 0 {
		fmt.Printf("Resuming from tick %d (%s)\n", campaign.LastTick, engine.SimTime(campaign.LastTick))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveCampaign(campaign); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Campaign saved.")
}
