// Package main provides the Telnet odds server. It serves interactive
// dice-probability sessions and optionally records simulated rolls to
// PostgreSQL.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/diceodds/internal/config"
	"github.com/cory-johannsen/diceodds/internal/dice"
	"github.com/cory-johannsen/diceodds/internal/frontend/handlers"
	"github.com/cory-johannsen/diceodds/internal/frontend/telnet"
	"github.com/cory-johannsen/diceodds/internal/observability"
	"github.com/cory-johannsen/diceodds/internal/preset"
	"github.com/cory-johannsen/diceodds/internal/server"
	"github.com/cory-johannsen/diceodds/internal/storage/postgres"
)

// rollStore adapts the PostgreSQL repository to the session handler's store.
type rollStore struct {
	repo *postgres.RollRepository
}

func (s *rollStore) Record(ctx context.Context, expression string, outcome, expectedValue float64) error {
	_, err := s.repo.Record(ctx, expression, outcome, expectedValue)
	return err
}

func (s *rollStore) Recent(ctx context.Context, limit int) ([]handlers.RecordedRoll, error) {
	rolls, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]handlers.RecordedRoll, len(rolls))
	for i, r := range rolls {
		out[i] = handlers.RecordedRoll{
			Expression:    r.Expression,
			Outcome:       r.Outcome,
			ExpectedValue: r.ExpectedValue,
			RolledAt:      r.RolledAt,
		}
	}
	return out, nil
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
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

	logger.Info("starting diceodds server",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Bool("history_enabled", cfg.History.Enabled),
	)

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	var store handlers.RollStore
	if cfg.History.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = &rollStore{repo: postgres.NewRollRepository(pool.DB())}

		health := server.NewTickService(30*time.Second, func() {
			if err := pool.Health(ctx, 5*time.Second); err != nil {
				logger.Warn("database health check failed", zap.Error(err))
			}
		})
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: health.Start,
			StopFn: func() {
				health.Stop()
				pool.Close()
			},
		})
	}

	var presets *preset.Library
	if cfg.Presets.Dir != "" {
		presets, err = preset.LoadDir(cfg.Presets.Dir)
		if err != nil {
			logger.Fatal("loading presets", zap.Error(err))
		}
		logger.Info("presets loaded",
			zap.String("dir", cfg.Presets.Dir),
			zap.Int("presets", presets.Len()),
		)
	}

	seed := cfg.Sampling.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	analyzer := dice.NewAnalyzer(dice.NewPseudoSource(seed), logger)

	calculator := handlers.NewCalculator(analyzer, presets, store, cfg.History.Limit, logger)
	acceptor := telnet.NewAcceptor(cfg.Telnet, calculator, logger)

	lifecycle.Add("telnet", &server.FuncService{
		StartFn: func() error {
			return acceptor.ListenAndServe()
		},
		StopFn: func() {
			acceptor.Stop()
		},
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
