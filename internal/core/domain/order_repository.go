package domain

import (
	"context"

	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

// OrderRepository is the abstraction for any kind of database intended to
// persist the local records of order chains.
type OrderRepository interface {
	// AddOrder stores a new order record. It fails if an order with the same
	// id already exists.
	AddOrder(ctx context.Context, order *Order) error
	// GetOrder returns the order with the given id (its base serial in hex
	// form).
	GetOrder(ctx context.Context, id string) (*Order, error)
	// GetOrderByNoteId returns the order whose live instance has the given
	// note id.
	GetOrderByNoteId(ctx context.Context, noteId string) (*Order, error)
	// GetAllOrders returns all the stored orders.
	GetAllOrders(ctx context.Context) ([]*Order, error)
	// GetOpenOrdersForCreator returns the open orders created by the given
	// account.
	GetOpenOrdersForCreator(ctx context.Context, creator notes.AccountID) ([]*Order, error)
	// UpdateOrder allows to commit multiple changes to the same order in a
	// transactional way.
	UpdateOrder(
		ctx context.Context, id string,
		updateFn func(o *Order) (*Order, error),
	) error
}
