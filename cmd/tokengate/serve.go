package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tokengate/tokengate"
	"github.com/tokengate/tokengate/httpapi"
)

var (
	flagListen            string
	flagUsersFile         string
	flagTokenTTL          time.Duration
	flagTokenLength       int
	flagHeaderPrefix      string
	flagDefaultRate       string
	flagRefreshOnLogin    bool
	flagCacheDisabled     bool
	flagCacheTTL          time.Duration
	flagAPIAccessClient   string
	flagAPIAccessInGET    bool
	flagAPIAccessSessions bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP authentication server",
		RunE:  runServe,
	}
)

func init() {
	f := serveCmd.Flags()
	f.StringVar(&flagListen, "listen", ":8080", "listen address")
	f.StringVar(&flagUsersFile, "users-file", "users.json", "path to the JSON user database")
	f.DurationVar(&flagTokenTTL, "token-ttl", 24*time.Hour, "default token lifetime, 0 for non-expiring")
	f.IntVar(&flagTokenLength, "token-length", 64, "token character length (even, >= 16)")
	f.StringVar(&flagHeaderPrefix, "header-prefix", "Token", "Authorization header scheme prefix")
	f.StringVar(&flagDefaultRate, "default-rate", "", `default throttle rate, e.g. "100/m" (empty disables throttling)`)
	f.BoolVar(&flagRefreshOnLogin, "refresh-on-login", false, "renew token expiry on repeat logins")
	f.BoolVar(&flagCacheDisabled, "no-cache", false, "disable the in-process auth result cache")
	f.DurationVar(&flagCacheTTL, "cache-ttl", time.Minute, "auth result cache lifetime")
	f.StringVar(&flagAPIAccessClient, "api-access-client", "", "client name reserved for personal API tokens")
	f.BoolVar(&flagAPIAccessInGET, "api-access-token-in-get", false, "include the token value in API access GET responses")
	f.BoolVar(&flagAPIAccessSessions, "api-access-in-sessions", false, "show API access tokens in session listings")
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}

	cfg := tokengate.DefaultConfig()
	cfg.DefaultTokenTTL = flagTokenTTL
	cfg.TokenLength = flagTokenLength
	cfg.HeaderPrefix = flagHeaderPrefix
	cfg.RefreshOnLogin = flagRefreshOnLogin
	cfg.Throttle.DefaultRate = flagDefaultRate
	cfg.Cache.Enabled = !flagCacheDisabled
	cfg.Cache.TTL = flagCacheTTL
	cfg.APIAccess.ClientName = flagAPIAccessClient
	cfg.APIAccess.IncludeTokenInGet = flagAPIAccessInGET
	cfg.APIAccess.ExcludeFromSessions = !flagAPIAccessSessions

	users, err := loadUsers(flagUsersFile)
	if err != nil {
		return err
	}

	rdb := newRedisClient()
	defer rdb.Close()

	engine, err := tokengate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(users).
		WithEventSink(tokengate.NewJSONWriterSink(os.Stdout)).
		WithKeyPrefix(flagKeyPrefix).
		Build()
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}
	defer engine.Close()

	if _, err := engine.Store().Ping(cmd.Context()); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	srv := &http.Server{
		Addr:              flagListen,
		Handler:           httpapi.New(engine, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", flagListen).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
