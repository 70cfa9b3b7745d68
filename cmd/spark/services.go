package main

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"

	"github.com/compolabs/spark-miden-v1/internal/config"
	apppubsub "github.com/compolabs/spark-miden-v1/internal/core/application/pubsub"
	"github.com/compolabs/spark-miden-v1/internal/core/application/swap"
	"github.com/compolabs/spark-miden-v1/internal/core/application/wallet"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	ledgerbadger "github.com/compolabs/spark-miden-v1/internal/infrastructure/ledger/badger"
	ledgerinmemory "github.com/compolabs/spark-miden-v1/internal/infrastructure/ledger/inmemory"
	"github.com/compolabs/spark-miden-v1/internal/infrastructure/pubsub"
	dbbadger "github.com/compolabs/spark-miden-v1/internal/infrastructure/storage/db/badger"
	dbinmemory "github.com/compolabs/spark-miden-v1/internal/infrastructure/storage/db/inmemory"
	"github.com/compolabs/spark-miden-v1/pkg/stats"
)

type services struct {
	wallet *wallet.Service
	pubsub *apppubsub.Service
	swap   *swap.Service
}

// getServices wires the application services on top of the storage
// selected by config. The returned cleanup func must be called on exit.
func getServices() (*services, func(), error) {
	l, err := newLedger()
	if err != nil {
		return nil, nil, err
	}
	repoManager, err := newRepoManager()
	if err != nil {
		l.Close()
		return nil, nil, err
	}
	ps, err := newPubSub()
	if err != nil {
		l.Close()
		repoManager.Close()
		return nil, nil, err
	}

	svc, err := newServices(l, repoManager, ps, swap.Config{
		MaxFillRetries: config.GetInt(config.MaxFillRetriesKey),
		FillRetryRate:  config.GetInt(config.FillRetryRateKey),
	})
	if err != nil {
		return nil, nil, err
	}

	statsCtx, stopStats := context.WithCancel(context.Background())
	if config.GetBool(config.EnableMetricsKey) {
		stats.EnableStatistics(
			statsCtx, config.GetStatsInterval(), svc.swap.Metrics(),
			config.GetMetricsPath(),
		)
	}

	cleanup := func() {
		stopStats()
		if config.GetBool(config.EnableMetricsKey) {
			if err := stats.DumpMetrics(svc.swap.Metrics(), config.GetMetricsPath()); err != nil {
				log.WithError(err).Warn("failed to dump metrics")
			}
		}
		svc.pubsub.Close()
		repoManager.Close()
		if err := l.Close(); err != nil {
			log.WithError(err).Warn("failed to close ledger")
		}
	}
	return svc, cleanup, nil
}

// newServices builds the application services on top of the given stores,
// closing all of them if any service can't be created.
func newServices(
	l ports.Ledger, repoManager ports.RepoManager, ps ports.PubSub, cfg swap.Config,
) (*services, error) {
	closeStores := func() {
		ps.Store().Close()
		repoManager.Close()
		l.Close()
	}

	walletSvc, err := wallet.NewService(l)
	if err != nil {
		closeStores()
		return nil, err
	}
	pubsubSvc, err := apppubsub.NewService(ps)
	if err != nil {
		closeStores()
		return nil, err
	}
	swapSvc, err := swap.NewService(walletSvc, pubsubSvc, repoManager, cfg)
	if err != nil {
		closeStores()
		return nil, err
	}
	return &services{walletSvc, pubsubSvc, swapSvc}, nil
}

func newLedger() (ports.Ledger, error) {
	dir := config.GetLedgerDir()
	if dir == "" {
		return ledgerinmemory.NewLedger(), nil
	}
	l, err := ledgerbadger.NewLedger(dir, dbLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return l, nil
}

func newRepoManager() (ports.RepoManager, error) {
	dir := config.GetDbDir()
	if dir == "" {
		return dbinmemory.NewRepoManager(), nil
	}
	repoManager, err := dbbadger.NewRepoManager(dir, dbLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return repoManager, nil
}

func newPubSub() (ports.PubSub, error) {
	dir := config.GetPubSubDir()
	if dir == "" {
		return pubsub.NewService(pubsub.NewInmemoryStore())
	}
	store, err := pubsub.NewBadgerStore(dir, dbLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to open webhook store: %w", err)
	}
	return pubsub.NewService(store)
}

// dbLogger returns the logger for badger, nil unless debugging.
func dbLogger() badger.Logger {
	if log.GetLevel() < log.DebugLevel {
		return nil
	}
	return log.StandardLogger()
}
