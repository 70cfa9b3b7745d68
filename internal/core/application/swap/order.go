package swap

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

// CreateOrder publishes a new order of creator offering the given amount in
// exchange for requested, funded by the creator's vault.
func (s *Service) CreateOrder(
	ctx context.Context, creator notes.AccountID,
	offered, requested domain.AssetAmount,
) (*domain.Order, error) {
	orders, err := s.createOrders(
		ctx, creator, []orderAmounts{{offered, requested}},
	)
	if err != nil {
		return nil, err
	}
	return orders[0], nil
}

// CreateOrders splits offeredTotal and requestedTotal into numOfOrders
// random amounts and publishes the resulting orders all at once.
func (s *Service) CreateOrders(
	ctx context.Context, creator notes.AccountID, numOfOrders int,
	offeredTotal, requestedTotal domain.AssetAmount,
) ([]*domain.Order, error) {
	offeredAmounts, err := s.distribute(numOfOrders, offeredTotal.Amount)
	if err != nil {
		return nil, fmt.Errorf("offered amounts: %w", err)
	}
	requestedAmounts, err := s.distribute(numOfOrders, requestedTotal.Amount)
	if err != nil {
		return nil, fmt.Errorf("requested amounts: %w", err)
	}

	amounts := make([]orderAmounts, 0, numOfOrders)
	for i := 0; i < numOfOrders; i++ {
		amounts = append(amounts, orderAmounts{
			offered:   domain.AssetAmount{AssetID: offeredTotal.AssetID, Amount: offeredAmounts[i]},
			requested: domain.AssetAmount{AssetID: requestedTotal.AssetID, Amount: requestedAmounts[i]},
		})
	}
	return s.createOrders(ctx, creator, amounts)
}

// ReclaimOrder returns the offered remaining of an open order to its
// creator. id is either the order id or the note id of its live instance.
func (s *Service) ReclaimOrder(
	ctx context.Context, caller notes.AccountID, id string,
) (*domain.Order, domain.AssetAmount, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, domain.AssetAmount{}, err
	}
	if !order.IsOpen() {
		return nil, domain.AssetAmount{}, domain.ErrOrderClosed
	}

	live, err := s.liveInstance(ctx, order.Current)
	if err != nil {
		return nil, domain.AssetAmount{}, err
	}
	if live == nil {
		return nil, domain.AssetAmount{}, fmt.Errorf(
			"%w: order %s has no live instance", domain.ErrStaleOrder, order.Id,
		)
	}
	if _, err := live.Reclaim(caller); err != nil {
		return nil, domain.AssetAmount{}, err
	}

	res, err := s.consume(ctx, consumeRequest(caller, live.Id(), 0, nil))
	if err != nil {
		return nil, domain.AssetAmount{}, err
	}
	s.metrics.reclaims.Inc()
	log.Debugf("order %s reclaimed by %s for %s", order.Id, caller, res.Credited)

	if err := s.repoManager.OrderRepository().UpdateOrder(
		ctx, order.Id, func(o *domain.Order) (*domain.Order, error) {
			if err := o.Sync(*live); err != nil {
				return nil, err
			}
			if _, err := o.Reclaim(caller); err != nil {
				return nil, err
			}
			order = o
			return o, nil
		},
	); err != nil {
		log.WithError(err).Warnf("failed to update order %s after reclaim", order.Id)
	}

	go func(order domain.Order, amount domain.AssetAmount) {
		if err := s.pubsub.PublishOrderReclaimedEvent(order, amount); err != nil {
			log.WithError(err).Warn("failed to publish order reclaimed event")
		}
	}(*order, res.Credited)

	return order, res.Credited, nil
}

// GetOrder returns the record of the order with the given order or note id
// together with its fills.
func (s *Service) GetOrder(
	ctx context.Context, id string,
) (*domain.Order, []*domain.Fill, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	fills, err := s.repoManager.FillRepository().GetFillsForOrder(ctx, order.Id)
	if err != nil {
		return nil, nil, err
	}
	return order, fills, nil
}

// ListOrderRecords returns the stored order records. If creator is not nil
// only its open orders are returned.
func (s *Service) ListOrderRecords(
	ctx context.Context, creator *notes.AccountID,
) ([]*domain.Order, error) {
	if creator != nil {
		return s.repoManager.OrderRepository().GetOpenOrdersForCreator(ctx, *creator)
	}
	return s.repoManager.OrderRepository().GetAllOrders(ctx)
}

// ListFills returns the stored fills newest first. If filler is not nil,
// only its fills are returned and page is ignored.
func (s *Service) ListFills(
	ctx context.Context, filler *notes.AccountID, page *domain.Page,
) ([]*domain.Fill, error) {
	if filler != nil {
		return s.repoManager.FillRepository().GetFillsForFiller(ctx, *filler)
	}
	return s.repoManager.FillRepository().GetAllFills(ctx, page)
}

type orderAmounts struct {
	offered   domain.AssetAmount
	requested domain.AssetAmount
}

func (s *Service) createOrders(
	ctx context.Context, creator notes.AccountID, amounts []orderAmounts,
) ([]*domain.Order, error) {
	instances := make([]*domain.SwapOrder, 0, len(amounts))
	list := make([]domain.Note, 0, len(amounts))
	var total uint64
	for _, a := range amounts {
		serial, err := s.serials.NewSerial()
		if err != nil {
			return nil, fmt.Errorf("failed to generate order serial: %w", err)
		}
		o, err := domain.NewSwapOrder(creator, a.offered, a.requested, serial)
		if err != nil {
			return nil, err
		}
		if a.offered.Amount > domain.MaxAssetAmount-total {
			return nil, domain.ErrAmountTooLarge
		}
		total += a.offered.Amount
		instances = append(instances, o)
		list = append(list, o.Note())
	}

	offeredTotal := domain.AssetAmount{AssetID: amounts[0].offered.AssetID, Amount: total}
	if err := s.wallet.HasBalance(ctx, creator, offeredTotal); err != nil {
		return nil, err
	}
	if err := s.publishNotes(ctx, creator, list); err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(instances))
	for _, o := range instances {
		order, err := domain.NewOrder(*o)
		if err != nil {
			return nil, err
		}
		if err := s.repoManager.OrderRepository().AddOrder(ctx, order); err != nil {
			log.WithError(err).Warnf("failed to store order %s", order.Id)
		}
		s.metrics.ordersCreated.Inc()
		orders = append(orders, order)
	}
	log.Debugf("%d order(s) created by %s", len(orders), creator)

	go func(orders []*domain.Order) {
		for _, o := range orders {
			if err := s.pubsub.PublishOrderCreatedEvent(*o); err != nil {
				log.WithError(err).Warn("failed to publish order created event")
			}
		}
	}(orders)

	return orders, nil
}

func (s *Service) getOrder(ctx context.Context, id string) (*domain.Order, error) {
	repo := s.repoManager.OrderRepository()
	order, err := repo.GetOrder(ctx, id)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, domain.ErrOrderNotFound) {
		return nil, err
	}
	return repo.GetOrderByNoteId(ctx, id)
}

// liveInstance returns the newest instance of the order chain of o still
// unconsumed on the ledger, if any.
func (s *Service) liveInstance(
	ctx context.Context, o domain.SwapOrder,
) (*domain.SwapOrder, error) {
	discovered, err := s.discover(ctx, o.Tag())
	if err != nil {
		return nil, err
	}

	var live *domain.SwapOrder
	for _, d := range discovered {
		if d.BaseSerial != o.BaseSerial {
			continue
		}
		if live == nil || d.FillNumber > live.FillNumber {
			instance := d
			live = &instance
		}
	}
	return live, nil
}
