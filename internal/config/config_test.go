package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Simulation: SimulationConfig{
			Runs:        1000,
			MaxRounds:   10,
			Seed:        1,
			Workers:     0,
			ToTheDeath:  true,
			OnHitDowned: "apply",
			Separation:  30,
		},
		Content: ContentConfig{
			Dir: "content",
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestWebAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:8080", cfg.Web.Addr())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: json
simulation:
  runs: 50
  max_rounds: 20
  seed: 42
  workers: 4
  to_the_death: false
  on_hit_downed: suppress
  separation: 60
content:
  dir: /srv/dndsim/content
web:
  host: 127.0.0.1
  port: 9090
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.Simulation.Runs)
	assert.Equal(t, 20, cfg.Simulation.MaxRounds)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.False(t, cfg.Simulation.ToTheDeath)
	assert.Equal(t, "suppress", cfg.Simulation.OnHitDowned)
	assert.Equal(t, "/srv/dndsim/content", cfg.Content.Dir)
	assert.Equal(t, 9090, cfg.Web.Port)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 1000, cfg.Simulation.Runs)
	assert.Equal(t, 10, cfg.Simulation.MaxRounds)
	assert.True(t, cfg.Simulation.ToTheDeath)
	assert.Equal(t, "apply", cfg.Simulation.OnHitDowned)
	assert.Equal(t, "content", cfg.Content.Dir)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateSimulationRuns(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.Runs = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateSimulationMaxRounds(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.MaxRounds = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateSimulationWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.Workers = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateOnHitDowned(t *testing.T) {
	for _, policy := range []string{"apply", "suppress"} {
		cfg := validConfig()
		cfg.Simulation.OnHitDowned = policy
		assert.NoError(t, cfg.Validate(), "policy %q should be valid", policy)
	}
	cfg := validConfig()
	cfg.Simulation.OnHitDowned = "maybe"
	assert.Error(t, cfg.Validate())
}

func TestValidateSeparation(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.Separation = -5
	assert.Error(t, cfg.Validate())
}

func TestValidateContentDirEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.Content.Dir = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateWebPort(t *testing.T) {
	cfg := validConfig()
	cfg.Web.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Web.Port = 65536
	assert.Error(t, cfg.Validate())
}

// Property-based tests

func TestPropertyValidWebPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.Web.Port = port
		err := cfg.Validate()
		if err != nil {
			t.Fatalf("valid port %d rejected: %v", port, err)
		}
	})
}

func TestPropertyInvalidWebPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// Generate ports outside valid range
		port := rapid.OneOf(
			rapid.IntRange(-1000, 0),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := validConfig()
		cfg.Web.Port = port
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}

func TestPropertySimulationBoundsAccepted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		runs := rapid.IntRange(1, 100000).Draw(t, "runs")
		rounds := rapid.IntRange(1, 1000).Draw(t, "max_rounds")
		workers := rapid.IntRange(0, 256).Draw(t, "workers")
		cfg := validConfig()
		cfg.Simulation.Runs = runs
		cfg.Simulation.MaxRounds = rounds
		cfg.Simulation.Workers = workers
		err := cfg.Validate()
		if err != nil {
			t.Fatalf("valid simulation runs=%d rounds=%d workers=%d rejected: %v", runs, rounds, workers, err)
		}
	})
}
