package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/0xpratik010/tridev/go/internal/auth"
	"github.com/0xpratik010/tridev/go/internal/dbconfig"
	"github.com/0xpratik010/tridev/go/internal/gateway"
	"github.com/0xpratik010/tridev/go/internal/history"
	"github.com/0xpratik010/tridev/go/internal/luckynumbers"
	"github.com/0xpratik010/tridev/go/internal/outbox"
	"github.com/0xpratik010/tridev/go/internal/reveal"
	"github.com/0xpratik010/tridev/go/internal/throttle"
	"github.com/0xpratik010/tridev/go/internal/viewer"
)

type Services struct {
	LuckyNumbers *luckynumbers.Service
	Viewer       *viewer.Service
	History      *history.Service
	Auth         *auth.Service
	AuthApp      *auth.App
	Gateway      *gateway.ConnectionManager
	Relay        *outbox.Relay
	OutboxHealth *outbox.HealthChecker

	closers []func() error
}

// Close releases the external connections opened by setupServices.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn().Err(err).Msg("failed to close service dependency")
		}
	}
}

func setupServices(ctx context.Context, database *sql.DB, cfg Config, fileCfg *FileConfig, dbCfg dbconfig.Config) (*Services, error) {
	// Database layer → Repository layer → App layer → Service layer
	clock := clockwork.NewRealClock()
	s := &Services{}

	loc, err := reveal.LoadZone(cfg.TimeZone, time.Local)
	if err != nil {
		return nil, err
	}
	log.Info().Str("zone", loc.String()).Msg("default reveal zone")

	// Lucky numbers
	luckyRepo := luckynumbers.NewRepository(database, clock)
	luckyApp := luckynumbers.NewApp(luckyRepo)
	s.LuckyNumbers = luckynumbers.NewService(luckyApp)

	// Viewer
	viewerApp := viewer.NewApp(luckyApp, clock, loc, fileCfg.Slots, fileCfg.Countdown.FetchTimeout)
	s.Viewer = viewer.NewService(viewerApp)

	// History
	historyApp := history.NewApp(luckyApp, clock, loc)
	s.History = history.NewService(historyApp)

	// Auth
	limiter, err := setupThrottle(ctx, s, cfg, clock)
	if err != nil {
		return nil, err
	}
	verifier, err := auth.NewBcryptVerifier(cfg.AdminEmail, cfg.AdminPasswordHash)
	if err != nil {
		return nil, fmt.Errorf("operator credentials: %w", err)
	}
	sessions := auth.NewSessionStore(clock, cfg.SessionTTL)
	s.AuthApp = auth.NewApp(limiter, verifier, sessions)
	var authOpts []auth.ServiceOption
	if cfg.TrustedClientIPHeader != "" {
		authOpts = append(authOpts, auth.WithClientIPHeader(cfg.TrustedClientIPHeader))
		log.Info().Str("header", cfg.TrustedClientIPHeader).Msg("login throttle keyed on forwarded client address")
	}
	s.Auth = auth.NewService(s.AuthApp, authOpts...)

	// Live slot stream
	gwCfg := gateway.DefaultConnectionConfig()
	gwCfg.CheckOrigin = originChecker(cfg.AllowedOrigins)
	s.Gateway = gateway.NewConnectionManager(
		gwCfg,
		luckyApp,
		viewerApp,
		clock,
		fileCfg.Countdown,
	)

	// Outbox relay
	if err := setupRelay(ctx, s, database, cfg, dbCfg, clock); err != nil {
		return nil, err
	}

	return s, nil
}

func setupThrottle(ctx context.Context, s *Services, cfg Config, clock clockwork.Clock) (*throttle.Throttle, error) {
	tcfg := throttle.Config{Limit: cfg.LoginMaxAttempts, Window: cfg.LoginWindow}
	if cfg.RedisAddr == "" {
		log.Info().Msg("login throttle using in-memory store")
		return throttle.New(throttle.NewMemoryStore(), clock, tcfg), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	s.closers = append(s.closers, client.Close)

	log.Info().Str("addr", cfg.RedisAddr).Msg("login throttle using redis store")
	return throttle.New(throttle.NewRedisStore(client, ""), clock, tcfg), nil
}

func setupRelay(ctx context.Context, s *Services, database *sql.DB, cfg Config, dbCfg dbconfig.Config, clock clockwork.Clock) error {
	var publisher outbox.Publisher = outbox.LogPublisher{}
	if cfg.NATSURL != "" {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATSURL
		jsp, err := outbox.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, jsp.Close)
		publisher = jsp
		log.Info().Str("nats_url", cfg.NATSURL).Str("stream", jsCfg.StreamName).Msg("outbox publishing to JetStream")
	} else {
		log.Warn().Msg("NATS_URL not set, outbox events are only logged")
	}

	var notify <-chan *pq.Notification
	if cfg.OutboxListen {
		listener, err := outbox.NewListener(dbCfg.DSN(), outbox.NotifyChannel)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, listener.Close)
		notify = listener.Notify
	}

	relayCfg := outbox.DefaultRelayConfig()
	relayCfg.PollInterval = cfg.OutboxPollInterval
	store := outbox.NewSQLStore(database)
	s.Relay = outbox.NewRelay(store, publisher, clock, relayCfg, notify)
	// a backlog idle for several sweeps means the relay is stuck
	s.OutboxHealth = outbox.NewHealthChecker(s.Relay, store, publisher, clock, 3*relayCfg.PollInterval)
	return nil
}
