package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate for settings that make a game impossible to start.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the static game settings. It is read-only once the game starts.
type Config struct {
	HumanPlayers    int      `yaml:"human_players"`
	ComputerPlayers int      `yaml:"computer_players"`
	PlayerNames     []string `yaml:"player_names"`

	// TableSize is the number of slots on the board.
	TableSize int `yaml:"table_size"`
	// TableTarget is how many occupied slots the dealer aims for. Zero means TableSize.
	TableTarget int `yaml:"table_target"`

	FeatureSize  int `yaml:"feature_size"`
	FeatureCount int `yaml:"feature_count"`
	// DeckSize defaults to FeatureSize^FeatureCount.
	DeckSize int `yaml:"deck_size"`

	// TurnTimeout > 0 is a countdown; 0 shows elapsed time; < 0 disables the timer.
	// In the last two modes the table is reshuffled only when it holds no set.
	TurnTimeout        time.Duration `yaml:"turn_timeout"`
	TurnTimeoutWarning time.Duration `yaml:"turn_timeout_warning"`
	PointFreeze        time.Duration `yaml:"point_freeze"`
	PenaltyFreeze      time.Duration `yaml:"penalty_freeze"`
	TableDelay         time.Duration `yaml:"table_delay"`
	ComputerDelay      time.Duration `yaml:"computer_delay"`
	TickInterval       time.Duration `yaml:"tick_interval"`
	FreezeTick         time.Duration `yaml:"freeze_tick"`

	Hints    bool   `yaml:"hints"`
	LogLevel string `yaml:"log_level"`

	GatewayAddr string `yaml:"gateway_addr"`
	NATSURL     string `yaml:"nats_url"`
}

// Default returns the classic 12-slot, 81-card game with two computer players.
func Default() Config {
	return Config{
		HumanPlayers:       0,
		ComputerPlayers:    2,
		TableSize:          12,
		FeatureSize:        3,
		FeatureCount:       4,
		DeckSize:           81,
		TurnTimeout:        60 * time.Second,
		TurnTimeoutWarning: 5 * time.Second,
		PointFreeze:        time.Second,
		PenaltyFreeze:      3 * time.Second,
		TableDelay:         100 * time.Millisecond,
		ComputerDelay:      time.Second,
		TickInterval:       10 * time.Millisecond,
		FreezeTick:         time.Second,
		LogLevel:           "info",
	}
}

// Load builds a Config from defaults, an optional YAML file and SETRUSH_* environment variables.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}
	cfg.applyEnv()

	if cfg.DeckSize == 0 {
		cfg.DeckSize = pow(cfg.FeatureSize, cfg.FeatureCount)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HumanPlayers = getEnvAsInt("SETRUSH_HUMAN_PLAYERS", c.HumanPlayers)
	c.ComputerPlayers = getEnvAsInt("SETRUSH_COMPUTER_PLAYERS", c.ComputerPlayers)
	c.TableSize = getEnvAsInt("SETRUSH_TABLE_SIZE", c.TableSize)
	c.TableTarget = getEnvAsInt("SETRUSH_TABLE_TARGET", c.TableTarget)
	c.FeatureSize = getEnvAsInt("SETRUSH_FEATURE_SIZE", c.FeatureSize)
	c.FeatureCount = getEnvAsInt("SETRUSH_FEATURE_COUNT", c.FeatureCount)
	c.DeckSize = getEnvAsInt("SETRUSH_DECK_SIZE", c.DeckSize)
	c.TurnTimeout = getEnvAsDuration("SETRUSH_TURN_TIMEOUT", c.TurnTimeout)
	c.TurnTimeoutWarning = getEnvAsDuration("SETRUSH_TURN_TIMEOUT_WARNING", c.TurnTimeoutWarning)
	c.PointFreeze = getEnvAsDuration("SETRUSH_POINT_FREEZE", c.PointFreeze)
	c.PenaltyFreeze = getEnvAsDuration("SETRUSH_PENALTY_FREEZE", c.PenaltyFreeze)
	c.TableDelay = getEnvAsDuration("SETRUSH_TABLE_DELAY", c.TableDelay)
	c.ComputerDelay = getEnvAsDuration("SETRUSH_COMPUTER_DELAY", c.ComputerDelay)
	c.Hints = getEnvAsBool("SETRUSH_HINTS", c.Hints)
	c.LogLevel = getEnv("SETRUSH_LOG_LEVEL", c.LogLevel)
	c.GatewayAddr = getEnv("SETRUSH_GATEWAY_ADDR", c.GatewayAddr)
	c.NATSURL = getEnv("SETRUSH_NATS_URL", c.NATSURL)
}

// Validate reports settings that would prevent a game from starting.
func (c Config) Validate() error {
	switch {
	case c.TableSize <= 0:
		return fmt.Errorf("%w: table_size must be positive, got %d", ErrInvalidConfig, c.TableSize)
	case c.TableTarget < 0 || c.TableTarget > c.TableSize:
		return fmt.Errorf("%w: table_target must be within [0,%d], got %d", ErrInvalidConfig, c.TableSize, c.TableTarget)
	case c.DeckSize < 3:
		return fmt.Errorf("%w: deck_size must be at least 3, got %d", ErrInvalidConfig, c.DeckSize)
	case c.FeatureSize > 0 && c.FeatureCount > 0 && c.DeckSize > pow(c.FeatureSize, c.FeatureCount):
		return fmt.Errorf("%w: deck_size %d exceeds %d^%d distinct cards", ErrInvalidConfig, c.DeckSize, c.FeatureSize, c.FeatureCount)
	case c.HumanPlayers < 0 || c.ComputerPlayers < 0:
		return fmt.Errorf("%w: player counts must not be negative", ErrInvalidConfig)
	case c.Players() == 0:
		return fmt.Errorf("%w: at least one player is required", ErrInvalidConfig)
	case c.PointFreeze < 0 || c.PenaltyFreeze < 0:
		return fmt.Errorf("%w: freeze durations must not be negative", ErrInvalidConfig)
	case c.TurnTimeout > 0 && c.TurnTimeoutWarning > c.TurnTimeout:
		return fmt.Errorf("%w: turn_timeout_warning %s exceeds turn_timeout %s", ErrInvalidConfig, c.TurnTimeoutWarning, c.TurnTimeout)
	case c.TickInterval <= 0 || c.FreezeTick <= 0:
		return fmt.Errorf("%w: tick intervals must be positive", ErrInvalidConfig)
	}
	return nil
}

// Players is the total number of participants.
func (c Config) Players() int {
	return c.HumanPlayers + c.ComputerPlayers
}

// Target is the number of occupied slots the dealer fills the board up to.
func (c Config) Target() int {
	if c.TableTarget == 0 {
		return c.TableSize
	}
	return c.TableTarget
}

// PlayerName returns the configured display name for a player, or a generated one.
func (c Config) PlayerName(id int) string {
	if id < len(c.PlayerNames) && c.PlayerNames[id] != "" {
		return c.PlayerNames[id]
	}
	if id < c.HumanPlayers {
		return fmt.Sprintf("player-%d", id+1)
	}
	return fmt.Sprintf("computer-%d", id+1)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-integer environment value")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring malformed duration")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func pow(base, exp int) int {
	if base <= 0 || exp <= 0 {
		return 0
	}
	n := math.Pow(float64(base), float64(exp))
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}
