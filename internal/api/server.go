// Package api provides the HTTP API for querying campaign state.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/warmarch/internal/conflict"
	"github.com/talgya/warmarch/internal/engine"
	"github.com/talgya/warmarch/internal/military"
	"github.com/talgya/warmarch/internal/persistence"
)

// Server serves the campaign state over HTTP.
type Server struct {
	Campaign *engine.Campaign
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Event queries walk the full event list; keep scrapers in check.
	eventsLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can follow the campaign).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/wars", s.handleWars)
	mux.HandleFunc("/api/v1/war/", s.handleWarDetail)
	mux.HandleFunc("/api/v1/armies", s.handleArmies)
	mux.HandleFunc("/api/v1/army/", s.handleArmyDetail)
	mux.HandleFunc("/api/v1/sieges", s.handleSieges)
	mux.HandleFunc("/api/v1/battles", s.handleBattles)
	mux.HandleFunc("/api/v1/companies", s.handleCompanies)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/events", eventsLimiter.Wrap(s.handleEvents))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no WARSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

// pathID extracts the UUID segment of /api/v1/<kind>/:id.
func pathID(r *http.Request) (uuid.UUID, error) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		return uuid.Nil, fmt.Errorf("missing id")
	}
	return uuid.Parse(parts[4])
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	c := s.Campaign
	c.RLock()
	defer c.RUnlock()

	status := map[string]any{
		"name":             "Warmarch",
		"tick":             c.CurrentTick(),
		"sim_time":         engine.SimTime(c.CurrentTick()),
		"season":           engine.SeasonName(c.CurrentSeason),
		"speed":            s.Eng.Speed(),
		"running":          s.Eng.IsRunning(),
		"active_wars":      c.Stats.ActiveWars,
		"ongoing_sieges":   c.Stats.OngoingSieges,
		"ongoing_battles":  c.Stats.OngoingBattles,
		"fielded_armies":   c.Stats.FieldedArmies,
		"total_troops":     c.Stats.TotalTroops,
		"total_casualties": c.Stats.TotalCasualties,
		"war_chests":       humanize.Comma(int64(c.Stats.TotalGold)) + " crowns",
	}
	writeJSON(w, status)
}

func (s *Server) handleWars(w http.ResponseWriter, r *http.Request) {
	type warSummary struct {
		ID            uuid.UUID          `json:"id"`
		CasusBelli    string             `json:"casus_belli"`
		Status        conflict.WarStatus `json:"status"`
		AttackerScore int                `json:"attacker_score"`
		DefenderScore int                `json:"defender_score"`
		Goals         int                `json:"goals"`
		Participants  int                `json:"participants"`
		DeclaredAt    string             `json:"declared_at"`
	}

	s.Campaign.RLock()
	defer s.Campaign.RUnlock()

	result := make([]warSummary, 0, len(s.Campaign.Wars))
	for _, war := range s.Campaign.Wars {
		result = append(result, warSummary{
			ID:            war.ID,
			CasusBelli:    conflict.CasusBelliName(war.CasusBelli),
			Status:        war.Status,
			AttackerScore: war.AttackerScore,
			DefenderScore: war.DefenderScore,
			Goals:         len(war.Goals),
			Participants:  len(war.ActiveParticipants(conflict.SideAttacker)) + len(war.ActiveParticipants(conflict.SideDefender)),
			DeclaredAt:    engine.SimTime(war.DeclaredTick),
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleWarDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid war id", http.StatusBadRequest)
		return
	}

	s.Campaign.RLock()
	defer s.Campaign.RUnlock()

	war, ok := s.Campaign.War(id)
	if !ok {
		http.Error(w, "war not found", http.StatusNotFound)
		return
	}

	// Attach the sieges and battles fought under this war.
	var sieges []*conflict.Siege
	for _, siege := range s.Campaign.Sieges {
		if siege.WarID == id {
			sieges = append(sieges, siege)
		}
	}
	var battles []*conflict.Battle
	for _, b := range s.Campaign.Battles {
		if b.WarID == id {
			battles = append(battles, b)
		}
	}

	winner := "none"
	if side, ok := war.WinningSide(); ok {
		winner = conflict.SideName(side)
	}

	writeJSON(w, map[string]any{
		"war":          war,
		"winning_side": winner,
		"sieges":       sieges,
		"battles":      battles,
	})
}

func (s *Server) handleArmies(w http.ResponseWriter, r *http.Request) {
	type armySummary struct {
		ID       uuid.UUID `json:"id"`
		Name     string    `json:"name"`
		Status   string    `json:"status"`
		Troops   int       `json:"troops"`
		Morale   float64   `json:"morale"`
		Supplies int       `json:"supplies"`
		Upkeep   string    `json:"daily_upkeep"`
		Gold     string    `json:"war_chest"`
	}

	s.Campaign.RLock()
	defer s.Campaign.RUnlock()

	result := make([]armySummary, 0, len(s.Campaign.Armies))
	for _, a := range s.Campaign.Armies {
		result = append(result, armySummary{
			ID:       a.ID,
			Name:     a.Name,
			Status:   military.StatusName(a.Status),
			Troops:   a.TotalTroops(),
			Morale:   a.Morale,
			Supplies: a.Supplies,
			Upkeep:   humanize.Comma(int64(a.GoldUpkeep)) + " crowns",
			Gold:     humanize.Comma(int64(a.Treasury.Balance())) + " crowns",
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleArmyDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid army id", http.StatusBadRequest)
		return
	}

	s.Campaign.RLock()
	defer s.Campaign.RUnlock()

	a, ok := s.Campaign.Army(id)
	if !ok {
		http.Error(w, "army not found", http.StatusNotFound)
		return
	}

	type unitView struct {
		Type     string `json:"type"`
		Count    int    `json:"count"`
		MaxCount int    `json:"max_count"`
		Attack   int    `json:"attack"`
		Defense  int    `json:"defense"`
		Status   string `json:"status"`
	}
	units := make([]unitView, 0, len(a.Units))
	for _, u := range a.Units {
		units = append(units, unitView{
			Type:     military.UnitName(u.Type),
			Count:    u.Count,
			MaxCount: u.MaxCount,
			Attack:   u.Attack,
			Defense:  u.Defense,
			Status:   military.UnitStatusName(u.Status),
		})
	}

	type lineView struct {
		ID               uuid.UUID `json:"id"`
		Status           string    `json:"status"`
		Rate             int       `json:"rate"`
		EffectiveRate    int       `json:"effective_rate"`
		Distance         int       `json:"distance"`
		Safety           int       `json:"safety"`
		DisruptionChance int       `json:"disruption_chance"`
	}
	lines := make([]lineView, 0, len(a.SupplyLines))
	for _, sl := range a.SupplyLines {
		lines = append(lines, lineView{
			ID:               sl.ID,
			Status:           military.SupplyStatusName(sl.Status),
			Rate:             sl.Rate,
			EffectiveRate:    sl.EffectiveSupplyRate(),
			Distance:         sl.Distance,
			Safety:           sl.Safety,
			DisruptionChance: sl.DisruptionChance(),
		})
	}

	writeJSON(w, map[string]any{
		"id":                a.ID,
		"name":              a.Name,
		"status":            military.StatusName(a.Status),
		"commander":         military.CommanderKindName(a.Commander.Kind),
		"morale":            a.Morale,
		"supplies":          a.Supplies,
		"daily_supply_cost": a.DailySupplyCost,
		"gold_upkeep":       humanize.Comma(int64(a.GoldUpkeep)) + " crowns",
		"war_chest":         humanize.Comma(int64(a.Treasury.Balance())) + " crowns",
		"total_troops":      a.TotalTroops(),
		"total_attack":      a.TotalAttack(),
		"total_defense":     a.TotalDefense(),
		"units":             units,
		"supply_lines":      lines,
	})
}

func (s *Server) handleSieges(w http.ResponseWriter, r *http.Request) {
	type siegeSummary struct {
		ID                uuid.UUID            `json:"id"`
		WarID             uuid.UUID            `json:"war_id"`
		Status            conflict.SiegeStatus `json:"status"`
		Target            string               `json:"target"`
		Fortification     int                  `json:"fortification_level"`
		Garrison          int                  `json:"garrison_strength"`
		DaysBesieged      int                  `json:"days_besieged"`
		HasBreach         bool                 `json:"has_breach"`
		AssaultDifficulty int                  `json:"assault_difficulty"`
	}

	s.Campaign.RLock()
	defer s.Campaign.RUnlock()

	result := make([]siegeSummary, 0, len(s.Campaign.Sieges))
	for _, siege := range s.Campaign.Sieges {
		target := siege.Target.KindName()
		if sett, ok := s.Campaign.Resolver.Resolve(siege.Target); ok {
			target = sett.Name
		}
		result = append(result, siegeSummary{
			ID:                siege.ID,
			WarID:             siege.WarID,
			Status:            siege.Status,
			Target:            target,
			Fortification:     siege.FortificationLevel,
			Garrison:          siege.GarrisonStrength,
			DaysBesieged:      siege.DaysBesieged,
			HasBreach:         siege.HasBreach,
			AssaultDifficulty: siege.AssaultDifficulty(),
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleBattles(w http.ResponseWriter, r *http.Request) {
	type battleSummary struct {
		ID         uuid.UUID             `json:"id"`
		WarID      uuid.UUID             `json:"war_id"`
		Status     conflict.BattleStatus `json:"status"`
		Phase      conflict.BattlePhase  `json:"phase"`
		Day        string                `json:"day"`
		Casualties int                   `json:"casualties"`
		Weather    string                `json:"weather"`
	}

	s.Campaign.RLock()
	defer s.Campaign.RUnlock()

	result := make([]battleSummary, 0, len(s.Campaign.Battles))
	for _, b := range s.Campaign.Battles {
		result = append(result, battleSummary{
			ID:         b.ID,
			WarID:      b.WarID,
			Status:     b.Status,
			Phase:      b.Phase,
			Day:        engine.SimTime(b.Day),
			Casualties: b.TotalCasualties(),
			Weather:    b.Weather.Description,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	type companySummary struct {
		ID             uuid.UUID `json:"id"`
		Name           string    `json:"name"`
		Reputation     string    `json:"reputation"`
		Specialization string    `json:"specialization"`
		Hired          bool      `json:"hired"`
		DaysRemaining  int       `json:"contract_days_remaining"`
		HireCost       string    `json:"hire_cost"`
		DailyCost      string    `json:"daily_cost"`
	}

	s.Campaign.RLock()
	defer s.Campaign.RUnlock()

	result := make([]companySummary, 0, len(s.Campaign.Companies))
	for _, m := range s.Campaign.Companies {
		result = append(result, companySummary{
			ID:             m.ID,
			Name:           m.Name,
			Reputation:     military.ReputationName(m.Reputation),
			Specialization: military.SpecializationName(m.Specialization),
			Hired:          m.IsHired(),
			DaysRemaining:  m.ContractDaysRemaining,
			HireCost:       humanize.Comma(int64(m.HireCost)) + " crowns",
			DailyCost:      humanize.Comma(int64(m.DailyCost)) + " crowns",
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.Campaign.RLock()
	stats := s.Campaign.Stats
	s.Campaign.RUnlock()

	writeJSON(w, stats)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	s.Campaign.RLock()
	defer s.Campaign.RUnlock()

	events := s.Campaign.Events

	// Optional category filter ("war", "siege", "battle", "army", "supply", "mercenary").
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}

	writeJSON(w, events[start:])
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveCampaign(s.Campaign); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	s.Campaign.RLock()
	tick := s.Campaign.CurrentTick()
	s.Campaign.RUnlock()

	writeJSON(w, map[string]any{
		"tick":    tick,
		"message": "snapshot saved",
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
