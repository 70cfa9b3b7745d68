package inmemory

import (
	"sync"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
)

type orderInmemoryStore struct {
	orders map[string]domain.Order
	locker *sync.Mutex
}

type fillInmemoryStore struct {
	fills        map[string]domain.Fill
	fillsByOrder map[string][]string
	locker       *sync.Mutex
}

type repoManager struct {
	orderRepository domain.OrderRepository
	fillRepository  domain.FillRepository
}

func NewRepoManager() ports.RepoManager {
	orderStore := &orderInmemoryStore{
		orders: map[string]domain.Order{},
		locker: &sync.Mutex{},
	}
	fillStore := &fillInmemoryStore{
		fills:        map[string]domain.Fill{},
		fillsByOrder: map[string][]string{},
		locker:       &sync.Mutex{},
	}

	return &repoManager{
		orderRepository: NewOrderRepositoryImpl(orderStore),
		fillRepository:  NewFillRepositoryImpl(fillStore),
	}
}

func (r *repoManager) OrderRepository() domain.OrderRepository {
	return r.orderRepository
}

func (r *repoManager) FillRepository() domain.FillRepository {
	return r.fillRepository
}

func (r *repoManager) Close() {}
