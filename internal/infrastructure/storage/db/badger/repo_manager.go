package dbbadger

import (
	"fmt"
	"path/filepath"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const clientDbDir = "client"

type repoManager struct {
	store *badgerhold.Store

	orderRepository domain.OrderRepository
	fillRepository  domain.FillRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// An empty baseDbDir makes the store live in memory.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, clientDbDir)
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening client db: %w", err)
	}

	return &repoManager{
		store:           store,
		orderRepository: NewOrderRepositoryImpl(store),
		fillRepository:  NewFillRepositoryImpl(store),
	}, nil
}

func (r *repoManager) OrderRepository() domain.OrderRepository {
	return r.orderRepository
}

func (r *repoManager) FillRepository() domain.FillRepository {
	return r.fillRepository
}

func (r *repoManager) Close() {
	if err := r.store.Close(); err != nil {
		log.WithError(err).Warn("error while closing client db")
	}
}

// CreateDb opens a badgerhold store in dbDir, or in memory if dbDir is
// empty.
func CreateDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	return createDb(dbDir, logger)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
