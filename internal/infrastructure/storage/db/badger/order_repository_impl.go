package dbbadger

import (
	"context"
	"errors"
	"fmt"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

type orderRepositoryImpl struct {
	store *badgerhold.Store
}

func NewOrderRepositoryImpl(store *badgerhold.Store) domain.OrderRepository {
	return &orderRepositoryImpl{store}
}

func (r *orderRepositoryImpl) AddOrder(
	_ context.Context, order *domain.Order,
) error {
	if err := r.store.Insert(order.Id, *order); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("order with id %s already exists", order.Id)
		}
		return err
	}
	return nil
}

func (r *orderRepositoryImpl) GetOrder(
	_ context.Context, id string,
) (*domain.Order, error) {
	var order domain.Order
	if err := r.store.Get(id, &order); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepositoryImpl) GetOrderByNoteId(
	_ context.Context, noteId string,
) (*domain.Order, error) {
	query := badgerhold.Where("CurrentNoteId").Eq(noteId)
	orders, err := r.findOrders(query)
	if err != nil {
		return nil, err
	}
	if len(orders) <= 0 {
		return nil, domain.ErrOrderNotFound
	}
	return orders[0], nil
}

func (r *orderRepositoryImpl) GetAllOrders(
	_ context.Context,
) ([]*domain.Order, error) {
	return r.findOrders(nil)
}

func (r *orderRepositoryImpl) GetOpenOrdersForCreator(
	_ context.Context, creator notes.AccountID,
) ([]*domain.Order, error) {
	query := badgerhold.
		Where("Creator").Eq(creator).
		And("Status.Code").Eq(domain.OrderStatusCodeOpen)
	return r.findOrders(query)
}

func (r *orderRepositoryImpl) UpdateOrder(
	_ context.Context, id string,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var order domain.Order
		if err := r.store.TxGet(tx, id, &order); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		updatedOrder, err := updateFn(&order)
		if err != nil {
			return err
		}
		return r.store.TxUpdate(tx, id, *updatedOrder)
	})
}

func (r *orderRepositoryImpl) findOrders(
	query *badgerhold.Query,
) ([]*domain.Order, error) {
	var orders []domain.Order
	if err := r.store.Find(&orders, query); err != nil {
		return nil, err
	}

	list := make([]*domain.Order, 0, len(orders))
	for i := range orders {
		list = append(list, &orders[i])
	}
	return list, nil
}
