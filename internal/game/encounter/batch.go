package encounter

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fellhaven/dndsim/internal/game/battle"
	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/dice"
)

// BatchResult tallies the terminal outcomes of a batch of encounters.
type BatchResult struct {
	Runs       int
	Wins       map[string]int
	Stalemates int

	// teams preserves prototype ordering for String.
	teams []string
}

// String formats the tally as "team1: 612 win(s), team2: 370 win(s), 18 stalemate(s)".
func (r BatchResult) String() string {
	out := ""
	for _, team := range r.teams {
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%s: %d win(s)", team, r.Wins[team])
	}
	if r.Stalemates > 0 {
		out += fmt.Sprintf(", %d stalemate(s)", r.Stalemates)
	}
	return out
}

// Batch repeats an encounter between the same prototype teams many times,
// spawning independent creature copies per run. Runs are embarrassingly
// parallel: each owns its creatures, its battle context and its seeded
// randomness source, so only the final tally is shared.
type Batch struct {
	// Prototypes are the teams to fight. The prototype creatures are never
	// mutated; each run spawns fresh copies.
	Prototypes []*battle.Team
	Runs       int
	// Workers is the number of concurrent runs; values below 1 run serially.
	Workers int
	// Seed is the base randomness seed. Run i uses Seed+i, so a batch is
	// reproducible regardless of worker scheduling.
	Seed   int64
	Policy Policy
	Logger *zap.Logger
}

// Run executes the batch and reduces the per-run outcomes to a win tally.
// Cancelling ctx stops scheduling new runs; completed runs still count.
//
// Precondition: Prototypes must hold at least two teams; Runs must be >= 1.
func (b *Batch) Run(ctx context.Context) (BatchResult, error) {
	if len(b.Prototypes) < 2 {
		return BatchResult{}, fmt.Errorf("encounter: batch needs at least two teams, got %d", len(b.Prototypes))
	}
	if b.Runs < 1 {
		return BatchResult{}, fmt.Errorf("encounter: batch needs at least one run, got %d", b.Runs)
	}
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > b.Runs {
		workers = b.Runs
	}

	result := BatchResult{Wins: make(map[string]int)}
	for _, t := range b.Prototypes {
		result.teams = append(result.teams, t.Name)
		result.Wins[t.Name] = 0
	}

	runs := make(chan int)
	results := make(chan Result)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range runs {
				results <- b.runOne(i, logger)
			}
		}()
	}
	go func() {
		defer close(runs)
		for i := 0; i < b.Runs; i++ {
			select {
			case runs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		result.Runs++
		if r.Stalemate {
			result.Stalemates++
			continue
		}
		result.Wins[r.Winner]++
	}
	if err := ctx.Err(); err != nil && result.Runs < b.Runs {
		return result, fmt.Errorf("encounter: batch cancelled after %d of %d runs: %w", result.Runs, b.Runs, err)
	}
	return result, nil
}

// runOne spawns fresh creatures from the prototypes and resolves a single
// encounter with the run's derived seed.
func (b *Batch) runOne(run int, logger *zap.Logger) Result {
	src := dice.NewSeededSource(b.Seed + int64(run))
	teams := make([]*battle.Team, len(b.Prototypes))
	for i, proto := range b.Prototypes {
		spawned := make([]*creature.Creature, len(proto.Creatures))
		for j, c := range proto.Creatures {
			spawned[j] = c.Spawn(src)
		}
		teams[i] = &battle.Team{Name: proto.Name, Creatures: spawned}
	}
	enc := New(battle.New(teams...), src, NopSink{}, logger, b.Policy)
	res := enc.Run()
	logger.Debug("batch run finished",
		zap.Int("run", run),
		zap.String("winner", res.Winner),
		zap.Bool("stalemate", res.Stalemate),
		zap.Int("rounds", res.Rounds),
	)
	return res
}
