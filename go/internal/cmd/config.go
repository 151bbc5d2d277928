package main

import (
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type flags struct {
	configPath string
	seed       int64
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("setrush", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", getEnv("SETRUSH_CONFIG", ""), "path to a YAML game config")
	fs.Int64Var(&f.seed, "seed", 0, "random seed for dealing and computer players (0 picks one)")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	return f, nil
}

// setupLogging installs the console writer and the configured level.
// Unknown levels fall back to info.
func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		log.Warn().Str("log_level", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
