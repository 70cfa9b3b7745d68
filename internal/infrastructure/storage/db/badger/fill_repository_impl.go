package dbbadger

import (
	"context"
	"errors"
	"sort"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

type fillRepositoryImpl struct {
	store *badgerhold.Store
}

func NewFillRepositoryImpl(store *badgerhold.Store) domain.FillRepository {
	return &fillRepositoryImpl{store}
}

func (r *fillRepositoryImpl) AddFills(
	_ context.Context, fills ...*domain.Fill,
) (int, error) {
	count := 0
	err := r.store.Badger().Update(func(tx *badger.Txn) error {
		for _, fill := range fills {
			if err := r.store.TxInsert(tx, fill.Id, *fill); err != nil {
				if errors.Is(err, badgerhold.ErrKeyExists) {
					continue
				}
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *fillRepositoryImpl) GetFillsForOrder(
	_ context.Context, orderId string,
) ([]*domain.Fill, error) {
	query := badgerhold.Where("OrderId").Eq(orderId).SortBy("FillNumber")
	return r.findFills(query)
}

func (r *fillRepositoryImpl) GetFillsForFiller(
	_ context.Context, filler notes.AccountID,
) ([]*domain.Fill, error) {
	query := badgerhold.Where("Filler").Eq(filler)
	return r.findFills(query)
}

func (r *fillRepositoryImpl) GetAllFills(
	_ context.Context, page *domain.Page,
) ([]*domain.Fill, error) {
	fills, err := r.findFills(nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(fills, func(i, j int) bool {
		return fills[i].Timestamp > fills[j].Timestamp
	})

	if page == nil {
		return fills, nil
	}
	start, end := page.Bounds(len(fills))
	return fills[start:end], nil
}

func (r *fillRepositoryImpl) findFills(
	query *badgerhold.Query,
) ([]*domain.Fill, error) {
	var fills []domain.Fill
	if err := r.store.Find(&fills, query); err != nil {
		return nil, err
	}

	list := make([]*domain.Fill, 0, len(fills))
	for i := range fills {
		list = append(list, &fills[i])
	}
	return list, nil
}
