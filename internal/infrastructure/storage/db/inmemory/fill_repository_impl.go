package inmemory

import (
	"context"
	"sort"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

type fillRepositoryImpl struct {
	store *fillInmemoryStore
}

// NewFillRepositoryImpl returns a new inmemory FillRepository
// implementation.
func NewFillRepositoryImpl(store *fillInmemoryStore) domain.FillRepository {
	return &fillRepositoryImpl{store}
}

func (r *fillRepositoryImpl) AddFills(
	_ context.Context, fills ...*domain.Fill,
) (int, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	count := 0
	for _, fill := range fills {
		if _, ok := r.store.fills[fill.Id]; ok {
			continue
		}
		r.store.fills[fill.Id] = *fill
		r.store.fillsByOrder[fill.OrderId] = append(
			r.store.fillsByOrder[fill.OrderId], fill.Id,
		)
		count++
	}
	return count, nil
}

func (r *fillRepositoryImpl) GetFillsForOrder(
	_ context.Context, orderId string,
) ([]*domain.Fill, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	ids := r.store.fillsByOrder[orderId]
	fills := make([]*domain.Fill, 0, len(ids))
	for _, id := range ids {
		fill := r.store.fills[id]
		fills = append(fills, &fill)
	}
	sort.SliceStable(fills, func(i, j int) bool {
		return fills[i].FillNumber < fills[j].FillNumber
	})
	return fills, nil
}

func (r *fillRepositoryImpl) GetFillsForFiller(
	_ context.Context, filler notes.AccountID,
) ([]*domain.Fill, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	fills := make([]*domain.Fill, 0)
	for _, fill := range r.store.fills {
		if fill.Filler == filler {
			f := fill
			fills = append(fills, &f)
		}
	}
	sort.SliceStable(fills, func(i, j int) bool {
		return fills[i].Id < fills[j].Id
	})
	return fills, nil
}

func (r *fillRepositoryImpl) GetAllFills(
	_ context.Context, page *domain.Page,
) ([]*domain.Fill, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	fills := make([]*domain.Fill, 0, len(r.store.fills))
	for _, fill := range r.store.fills {
		f := fill
		fills = append(fills, &f)
	}
	sort.SliceStable(fills, func(i, j int) bool {
		if fills[i].Timestamp == fills[j].Timestamp {
			return fills[i].Id < fills[j].Id
		}
		return fills[i].Timestamp > fills[j].Timestamp
	})

	if page == nil {
		return fills, nil
	}
	start, end := page.Bounds(len(fills))
	return fills[start:end], nil
}
