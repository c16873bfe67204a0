// Package main provides the web binary: a small HTTP API over the monster
// catalogue plus a websocket endpoint that streams a live encounter
// blow-by-blow as JSON events.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fellhaven/dndsim/internal/config"
	"github.com/fellhaven/dndsim/internal/game/battle"
	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/encounter"
	"github.com/fellhaven/dndsim/internal/game/template"
	"github.com/fellhaven/dndsim/internal/observability"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type server struct {
	lib    *template.Library
	cfg    config.SimulationConfig
	logger *zap.Logger
}

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty = defaults plus DNDSIM_ env overrides")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	lib, err := template.Load(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.String("dir", cfg.Content.Dir), zap.Error(err))
	}

	s := &server{lib: lib, cfg: cfg.Simulation, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/monsters", s.handleMonsters).Methods(http.MethodGet)
	r.HandleFunc("/api/batch", s.handleBatch).Methods(http.MethodPost)
	r.HandleFunc("/ws/encounter", s.handleEncounterWS).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         cfg.Web.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // websocket streams have no fixed deadline
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", zap.String("addr", cfg.Web.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("serving", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutting down", zap.Error(err))
	}
	logger.Info("stopped")
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *server) handleMonsters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.lib.MonsterKeys())
}

type batchRequest struct {
	Red  []string `json:"red"`
	Blue []string `json:"blue"`
	Runs int      `json:"runs"`
	Seed int64    `json:"seed"`
}

type batchResponse struct {
	Runs       int            `json:"runs"`
	Wins       map[string]int `json:"wins"`
	Stalemates int            `json:"stalemates"`
}

func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Runs <= 0 {
		req.Runs = s.cfg.Runs
	}
	if req.Seed == 0 {
		req.Seed = s.cfg.Seed
	}

	src := dice.NewSeededSource(req.Seed)
	red, err := s.buildTeam("red", req.Red, src)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	blue, err := s.buildTeam("blue", req.Blue, src)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b := &encounter.Batch{
		Prototypes: []*battle.Team{red, blue},
		Runs:       req.Runs,
		Workers:    s.cfg.Workers,
		Seed:       req.Seed,
		Policy:     s.policy(),
		Logger:     s.logger,
	}
	result, err := b.Run(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{
		Runs:       result.Runs,
		Wins:       result.Wins,
		Stalemates: result.Stalemates,
	})
}

// handleEncounterWS runs one encounter and streams every event to the client
// as a JSON frame, closing the socket when the encounter finishes.
func (s *server) handleEncounterWS(w http.ResponseWriter, r *http.Request) {
	// A seed makes the run reproducible; without one each watch is a fresh
	// random encounter.
	q := r.URL.Query()
	src := dice.NewCryptoSource()
	if v := q.Get("seed"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "bad seed: "+err.Error(), http.StatusBadRequest)
			return
		}
		src = dice.NewSeededSource(parsed)
	}
	red, err := s.buildTeam("red", q["red"], src)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	blue, err := s.buildTeam("blue", q["blue"], src)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sink := &wsSink{conn: conn, logger: s.logger}
	enc := encounter.New(battle.New(red, blue), src, sink, s.logger, s.policy())
	result := enc.Run()
	s.logger.Info("streamed encounter finished",
		zap.String("winner", result.Winner),
		zap.Bool("stalemate", result.Stalemate),
		zap.Int("rounds", result.Rounds),
	)
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// wsSink forwards encounter events to a websocket connection. A failed write
// marks the sink dead; the encounter keeps running to completion.
type wsSink struct {
	conn   *websocket.Conn
	logger *zap.Logger
	dead   bool
}

func (s *wsSink) Emit(ev encounter.Event) {
	if s.dead {
		return
	}
	if err := s.conn.WriteJSON(ev); err != nil {
		s.dead = true
		s.logger.Warn("websocket write failed, dropping remaining events", zap.Error(err))
	}
}

func (s *server) policy() encounter.Policy {
	return encounter.Policy{
		MaxRounds:   s.cfg.MaxRounds,
		ToTheDeath:  s.cfg.ToTheDeath,
		OnHitDowned: encounter.OnHitDownedPolicy(s.cfg.OnHitDowned),
		Separation:  s.cfg.Separation,
	}
}

func (s *server) buildTeam(name string, keys []string, src dice.Source) (*battle.Team, error) {
	team := &battle.Team{Name: name}
	for _, key := range keys {
		c, err := s.lib.Creature(key, src)
		if err != nil {
			return nil, err
		}
		team.Creatures = append(team.Creatures, c)
	}
	if len(team.Creatures) == 0 {
		return nil, fmt.Errorf("team %q has no members", name)
	}
	return team, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
