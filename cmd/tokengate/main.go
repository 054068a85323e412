// Command tokengate runs the token authentication server and its
// administrative subcommands.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	flagRedisAddr     string
	flagRedisPassword string
	flagRedisDB       int
	flagKeyPrefix     string
	flagLogLevel      string
	flagLogFile       string

	rootCmd = &cobra.Command{
		Use:   "tokengate",
		Short: "Per-client API token authentication service",
		Long: `tokengate issues, validates and throttles per-client API tokens
backed by Redis. Run "tokengate serve" to start the HTTP server or
"tokengate create-client" to register an API client.`,
		SilenceUsage: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagRedisAddr, "redis-addr", "127.0.0.1:6379", "Redis address")
	pf.StringVar(&flagRedisPassword, "redis-password", "", "Redis password")
	pf.IntVar(&flagRedisDB, "redis-db", 0, "Redis database number")
	pf.StringVar(&flagKeyPrefix, "key-prefix", "", "Redis key namespace override")
	pf.StringVar(&flagLogLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
	pf.StringVar(&flagLogFile, "log-file", "", "write logs to this file with rotation instead of stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createClientCmd)
	rootCmd.AddCommand(listClientsCmd)
}

func newRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     flagRedisAddr,
		Password: flagRedisPassword,
		DB:       flagRedisDB,
	})
}

func newLogger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(flagLogLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if flagLogFile != "" {
		out = &lumberjack.Logger{
			Filename:   flagLogFile,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
