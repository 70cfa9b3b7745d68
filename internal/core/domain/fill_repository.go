package domain

import (
	"context"

	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

// FillRepository is the abstraction for any kind of database intended to
// persist Fills.
type FillRepository interface {
	// AddFills adds the provided fills to the repository. Those already
	// existing won't be re-added.
	AddFills(ctx context.Context, fills ...*Fill) (int, error)
	// GetFillsForOrder returns the fills of the given order sorted by fill
	// number.
	GetFillsForOrder(ctx context.Context, orderId string) ([]*Fill, error)
	// GetFillsForFiller returns the fills made by the given account.
	GetFillsForFiller(ctx context.Context, filler notes.AccountID) ([]*Fill, error)
	// GetAllFills returns the stored fills, newest first. A nil page returns
	// all of them.
	GetAllFills(ctx context.Context, page *Page) ([]*Fill, error)
}
