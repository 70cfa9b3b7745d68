package inmemory

import (
	"context"
	"fmt"
	"sort"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

type orderRepositoryImpl struct {
	store *orderInmemoryStore
}

// NewOrderRepositoryImpl returns a new inmemory OrderRepository
// implementation.
func NewOrderRepositoryImpl(store *orderInmemoryStore) domain.OrderRepository {
	return &orderRepositoryImpl{store}
}

func (r *orderRepositoryImpl) AddOrder(
	_ context.Context, order *domain.Order,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.orders[order.Id]; ok {
		return fmt.Errorf("order with id %s already exists", order.Id)
	}
	r.store.orders[order.Id] = *order
	return nil
}

func (r *orderRepositoryImpl) GetOrder(
	_ context.Context, id string,
) (*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &order, nil
}

func (r *orderRepositoryImpl) GetOrderByNoteId(
	_ context.Context, noteId string,
) (*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	for _, order := range r.store.orders {
		if order.CurrentNoteId == noteId {
			o := order
			return &o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *orderRepositoryImpl) GetAllOrders(
	_ context.Context,
) ([]*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.filterOrders(func(_ domain.Order) bool { return true }), nil
}

func (r *orderRepositoryImpl) GetOpenOrdersForCreator(
	_ context.Context, creator notes.AccountID,
) ([]*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.filterOrders(func(o domain.Order) bool {
		return o.Creator == creator && o.IsOpen()
	}), nil
}

func (r *orderRepositoryImpl) UpdateOrder(
	_ context.Context, id string,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}

	updatedOrder, err := updateFn(&order)
	if err != nil {
		return err
	}
	r.store.orders[id] = *updatedOrder
	return nil
}

// filterOrders returns the matching orders sorted by id, the order of
// iteration of the map being random.
func (r *orderRepositoryImpl) filterOrders(
	match func(o domain.Order) bool,
) []*domain.Order {
	list := make([]*domain.Order, 0)
	for _, order := range r.store.orders {
		if match(order) {
			o := order
			list = append(list, &o)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Id < list[j].Id
	})
	return list
}
