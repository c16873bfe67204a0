// Package main provides the batch simulation binary: it pits two monster
// teams against each other many times and prints the win tally.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fellhaven/dndsim/internal/config"
	"github.com/fellhaven/dndsim/internal/game/battle"
	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/encounter"
	"github.com/fellhaven/dndsim/internal/game/template"
	"github.com/fellhaven/dndsim/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults plus DNDSIM_ env overrides")
	red := flag.String("red", "", "comma-separated monster keys for the red team")
	blue := flag.String("blue", "", "comma-separated monster keys for the blue team")
	runs := flag.Int("runs", 0, "number of encounters to simulate; 0 = config value")
	seed := flag.Int64("seed", 0, "base RNG seed; 0 = config value")
	workers := flag.Int("workers", -1, "concurrent encounters; -1 = config value")
	list := flag.Bool("list", false, "list available monster keys and exit")
	rollExpr := flag.String("roll", "", "roll a dice expression (e.g. 2d6+3) and exit")
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

	if *rollExpr != "" {
		roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
		result, err := roller.RollExpr(*rollExpr)
		if err != nil {
			logger.Fatal("rolling", zap.String("expression", *rollExpr), zap.Error(err))
		}
		fmt.Println(result)
		return
	}

	lib, err := template.Load(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.String("dir", cfg.Content.Dir), zap.Error(err))
	}

	if *list {
		for _, key := range lib.MonsterKeys() {
			fmt.Println(key)
		}
		return
	}
	if *red == "" || *blue == "" {
		fmt.Fprintln(os.Stderr, "usage: simulate -red <keys> -blue <keys> [-runs N] [-seed N] [-config <path>]")
		os.Exit(1)
	}

	sim := cfg.Simulation
	if *runs > 0 {
		sim.Runs = *runs
	}
	if *seed != 0 {
		sim.Seed = *seed
	}
	if *workers >= 0 {
		sim.Workers = *workers
	}

	src := dice.NewSeededSource(sim.Seed)
	redTeam, err := buildTeam(lib, "red", *red, src)
	if err != nil {
		logger.Fatal("building red team", zap.Error(err))
	}
	blueTeam, err := buildTeam(lib, "blue", *blue, src)
	if err != nil {
		logger.Fatal("building blue team", zap.Error(err))
	}

	logger.Info("starting batch",
		zap.String("red", *red),
		zap.String("blue", *blue),
		zap.Int("runs", sim.Runs),
		zap.Int64("seed", sim.Seed),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &encounter.Batch{
		Prototypes: []*battle.Team{redTeam, blueTeam},
		Runs:       sim.Runs,
		Workers:    sim.Workers,
		Seed:       sim.Seed,
		Policy: encounter.Policy{
			MaxRounds:   sim.MaxRounds,
			ToTheDeath:  sim.ToTheDeath,
			OnHitDowned: encounter.OnHitDownedPolicy(sim.OnHitDowned),
			Separation:  sim.Separation,
		},
		Logger: logger,
	}
	result, err := b.Run(ctx)
	if err != nil {
		logger.Fatal("running batch", zap.Error(err))
	}

	fmt.Printf("%s vs %s over %d runs:\n%s\n", *red, *blue, result.Runs, result)
	logger.Info("batch complete",
		zap.Int("runs", result.Runs),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
}

// buildTeam resolves comma-separated monster keys into a prototype team.
func buildTeam(lib *template.Library, name, keys string, src dice.Source) (*battle.Team, error) {
	var members []*creature.Creature
	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		c, err := lib.Creature(key, src)
		if err != nil {
			return nil, err
		}
		members = append(members, c)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("team %q has no members", name)
	}
	return &battle.Team{Name: name, Creatures: members}, nil
}
