package swap

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/compolabs/spark-miden-v1/internal/core/application/pubsub"
	"github.com/compolabs/spark-miden-v1/internal/core/application/wallet"
	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	"github.com/compolabs/spark-miden-v1/pkg/circuitbreaker"
	"github.com/compolabs/spark-miden-v1/pkg/mathutil"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

const (
	DefaultMaxFillRetries = 3
	DefaultFillRetryRate  = 10
)

var (
	ErrServiceUnavailable = fmt.Errorf("service is unavailable, retry later")
)

// Config holds the optional settings of the swap service. Zero values are
// replaced with defaults.
type Config struct {
	// MaxFillRetries is the number of times a fill is retried after the
	// selected order went stale.
	MaxFillRetries int
	// FillRetryRate is the max number of fill attempts per second.
	FillRetryRate int
	// SerialSource provides the base serials of new orders. Defaults to a
	// crypto/rand based source.
	SerialSource ports.SerialSource
	// Rand is used to split the amounts of batches of orders.
	Rand *rand.Rand
	// Registry collects the metrics of the service.
	Registry *prometheus.Registry
}

type Service struct {
	wallet      *wallet.Service
	pubsub      *pubsub.Service
	repoManager ports.RepoManager

	serials    ports.SerialSource
	rngLock    sync.Mutex
	rng        *rand.Rand
	cb         *gobreaker.CircuitBreaker
	limiter    ratelimit.Limiter
	maxRetries int
	registry   *prometheus.Registry
	metrics    *metrics
}

func NewService(
	walletSvc *wallet.Service,
	pubsubSvc *pubsub.Service,
	repoManager ports.RepoManager,
	cfg Config,
) (*Service, error) {
	if walletSvc == nil {
		return nil, fmt.Errorf("missing wallet service")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if cfg.MaxFillRetries < 0 {
		return nil, fmt.Errorf("max fill retries must not be negative")
	}
	if cfg.FillRetryRate < 0 {
		return nil, fmt.Errorf("fill retry rate must not be negative")
	}

	if cfg.MaxFillRetries == 0 {
		cfg.MaxFillRetries = DefaultMaxFillRetries
	}
	if cfg.FillRetryRate == 0 {
		cfg.FillRetryRate = DefaultFillRetryRate
	}
	if cfg.SerialSource == nil {
		cfg.SerialSource = NewSerialSource()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	m, err := newMetrics(cfg.Registry)
	if err != nil {
		return nil, err
	}

	// Errors caused by the request itself must not trip the breaker.
	cb := circuitbreaker.NewCircuitBreaker("settlement", circuitbreaker.IgnoreErrors(
		domain.ErrStaleOrder, domain.ErrUnauthorized, domain.ErrInsufficientBalance,
		domain.ErrCommitmentMismatch, domain.ErrInvalidNote, domain.ErrZeroAmount,
		domain.ErrOverFill, domain.ErrAmountTooLarge,
	))

	return &Service{
		wallet:      walletSvc,
		pubsub:      pubsubSvc,
		repoManager: repoManager,
		serials:     cfg.SerialSource,
		rng:         cfg.Rand,
		cb:          cb,
		limiter:     ratelimit.New(cfg.FillRetryRate),
		maxRetries:  cfg.MaxFillRetries,
		registry:    cfg.Registry,
		metrics:     m,
	}, nil
}

// distribute splits total into n random amounts. rng is not safe for
// concurrent use.
func (s *Service) distribute(n int, total uint64) ([]uint64, error) {
	s.rngLock.Lock()
	defer s.rngLock.Unlock()

	return mathutil.RandomDistribution(s.rng, n, total)
}

// Metrics returns the gatherer of the metrics collected by the service.
func (s *Service) Metrics() prometheus.Gatherer {
	return s.registry
}

func (s *Service) ledger() ports.Ledger {
	return s.wallet.Ledger()
}

func (s *Service) publishNotes(
	ctx context.Context, account notes.AccountID, list []domain.Note,
) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.ledger().Publish(ctx, account, list)
	})
	return s.checkBreaker(err)
}

func (s *Service) consume(
	ctx context.Context, req ports.ConsumeRequest,
) (*ports.ConsumeResult, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.ledger().Consume(ctx, req)
	})
	if err := s.checkBreaker(err); err != nil {
		return nil, err
	}
	return res.(*ports.ConsumeResult), nil
}

func (s *Service) checkBreaker(err error) error {
	if err == nil {
		return nil
	}
	if circuitbreaker.IsOpen(err) {
		log.WithError(err).Warn("settlement layer unavailable")
		return ErrServiceUnavailable
	}
	return err
}

func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrStaleOrder)
}
