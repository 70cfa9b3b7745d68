package swap

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	"github.com/compolabs/spark-miden-v1/pkg/mathutil"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

// FillOrder fills the best discovered order acceptable to candidate on
// behalf of filler. The candidate offers its Source asset and wants the
// Target one: the filled order is the best priced among those offering
// Target for Source, and it's filled for as much as candidate offers, up to
// the order's requested remaining. If the selected order is consumed by
// somebody else in the meantime the fill is retried against a fresh book.
func (s *Service) FillOrder(
	ctx context.Context, filler notes.AccountID, candidate domain.ClientOrder,
) (*domain.Fill, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		fill, err := s.fillBest(ctx, filler, candidate)
		if err == nil {
			return fill, nil
		}
		if !isRetryable(err) || attempt >= s.maxRetries {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		s.metrics.staleRetries.Inc()
		log.WithError(err).Debugf("fill attempt #%d failed, retrying", attempt+1)
		s.limiter.Take()
	}
}

// ConsumePayments consumes all the payment notes addressed to account and
// returns them.
func (s *Service) ConsumePayments(
	ctx context.Context, account notes.AccountID,
) ([]domain.PaymentNote, error) {
	list, err := s.ledger().QueryByTag(ctx, notes.AccountTag(account))
	if err != nil {
		return nil, err
	}

	payments := make([]domain.PaymentNote, 0)
	for _, n := range list {
		payment, err := domain.PaymentNoteFromNote(n)
		if err != nil {
			log.WithError(err).Debugf("skipping note %s", n.Id)
			continue
		}
		// Account tags carry only part of the id.
		if payment.Target != account {
			continue
		}

		if _, err := s.consume(ctx, consumeRequest(account, n.Id, 0, nil)); err != nil {
			if errors.Is(err, domain.ErrStaleOrder) {
				continue
			}
			return payments, err
		}
		s.metrics.paymentsConsumed.Inc()
		payments = append(payments, *payment)
	}
	return payments, nil
}

// GetBook returns the discovered orders acceptable to candidate, best first.
func (s *Service) GetBook(
	ctx context.Context, candidate domain.ClientOrder,
) ([]domain.ClientOrder, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	discovered, err := s.discover(ctx, bookTag(candidate))
	if err != nil {
		return nil, err
	}
	return domain.BuildBook(candidate, clientOrders(discovered))
}

// ListOrders returns the live orders tagged with tag, ranked by price.
func (s *Service) ListOrders(
	ctx context.Context, tag notes.NoteTag,
) ([]domain.ClientOrder, error) {
	discovered, err := s.discover(ctx, tag)
	if err != nil {
		return nil, err
	}
	orders := clientOrders(discovered)
	domain.SortOrders(orders)
	return orders, nil
}

// ListOrdersForPair returns the live orders offering offered in exchange
// for requested, ranked by price.
func (s *Service) ListOrdersForPair(
	ctx context.Context, offered, requested notes.AccountID,
) ([]domain.ClientOrder, error) {
	discovered, err := s.discover(ctx, notes.DeriveTag(offered, requested))
	if err != nil {
		return nil, err
	}

	orders := make([]domain.ClientOrder, 0, len(discovered))
	for _, o := range discovered {
		// Tags carry only part of the asset ids.
		if o.Offered.AssetID != offered || o.Requested.AssetID != requested {
			continue
		}
		orders = append(orders, domain.ClientOrderFromSwapOrder(o))
	}
	domain.SortOrders(orders)
	return orders, nil
}

// QueryNotes returns the live notes tagged with any of the given tags.
func (s *Service) QueryNotes(
	ctx context.Context, tags ...notes.NoteTag,
) ([]domain.Note, error) {
	list := make([]domain.Note, 0)
	for _, tag := range tags {
		found, err := s.ledger().QueryByTag(ctx, tag)
		if err != nil {
			return nil, err
		}
		list = append(list, found...)
	}
	return list, nil
}

func (s *Service) fillBest(
	ctx context.Context, filler notes.AccountID, candidate domain.ClientOrder,
) (*domain.Fill, error) {
	discovered, err := s.discover(ctx, bookTag(candidate))
	if err != nil {
		return nil, err
	}

	instances := make(map[notes.Word]domain.SwapOrder)
	others := make([]domain.SwapOrder, 0, len(discovered))
	for _, o := range discovered {
		// Own orders can only be reclaimed.
		if o.IsCreator(filler) {
			continue
		}
		instances[o.Id()] = o
		others = append(others, o)
	}

	book, err := domain.BuildBook(candidate, clientOrders(others))
	if err != nil {
		return nil, err
	}
	best, err := domain.SelectBest(book)
	if err != nil {
		return nil, err
	}
	instance := instances[best.Id]

	res, err := domain.ComputeFill(
		instance, filler, domain.FillAmountFor(best, candidate),
	)
	if err != nil {
		return nil, err
	}
	if err := s.wallet.HasBalance(ctx, filler, res.RequestedFill); err != nil {
		return nil, err
	}
	// Fixed-width note scripts truncate the price ratio and may settle a
	// slightly different amount.
	if drift, _ := mathutil.ScaledFillDrift(
		instance.Offered.Amount, instance.Requested.Amount, res.RequestedFill.Amount,
	); drift > 0 {
		log.Debugf(
			"fill of order %s is %d units off the scaled computation",
			instance.BaseSerial, drift,
		)
	}

	expected := domain.NoteIds(res.OutputNotes())
	if _, err := s.consume(ctx, consumeRequest(
		filler, best.Id, res.RequestedFill.Amount, expected,
	)); err != nil {
		return nil, err
	}
	s.metrics.observeFill(res.IsFullFill())
	log.Debugf(
		"order %s filled #%d by %s: paid %s, received %s",
		instance.BaseSerial, res.FillNumber, filler, res.RequestedFill, res.OfferedOut,
	)

	order, fill := s.recordFill(ctx, instance, res)
	go func(order domain.Order, fill domain.Fill) {
		if err := s.pubsub.PublishOrderFilledEvent(order, fill); err != nil {
			log.WithError(err).Warn("failed to publish order filled event")
		}
	}(*order, *fill)

	return fill, nil
}

// recordFill stores the settled fill and moves the order record forward.
// Orders created by other clients get a record the first time they are
// filled. Storage failures are only logged, the fill being already settled.
func (s *Service) recordFill(
	ctx context.Context, instance domain.SwapOrder, res *domain.FillResult,
) (*domain.Order, *domain.Fill) {
	orderId := instance.BaseSerial.String()
	fill := domain.NewFill(orderId, instance.Id().String(), res)

	var order *domain.Order
	repo := s.repoManager.OrderRepository()
	err := repo.UpdateOrder(ctx, orderId, func(o *domain.Order) (*domain.Order, error) {
		if err := o.Sync(instance); err != nil {
			return nil, err
		}
		if err := o.ApplyFill(res); err != nil {
			return nil, err
		}
		order = o
		return o, nil
	})
	if errors.Is(err, domain.ErrOrderNotFound) {
		order, err = domain.NewOrder(instance)
		if err == nil {
			if err = order.ApplyFill(res); err == nil {
				err = repo.AddOrder(ctx, order)
			}
		}
	}
	if err != nil {
		log.WithError(err).Warnf("failed to update order %s after fill", orderId)
		if order == nil {
			order, _ = domain.NewOrder(instance)
		}
	}

	if _, err := s.repoManager.FillRepository().AddFills(ctx, fill); err != nil {
		log.WithError(err).Warnf("failed to store fill of order %s", orderId)
	}
	return order, fill
}

// discover returns the valid order instances tagged with tag, in discovery
// order. Notes that can't be decoded are skipped.
func (s *Service) discover(
	ctx context.Context, tag notes.NoteTag,
) ([]domain.SwapOrder, error) {
	list, err := s.ledger().QueryByTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to discover notes: %w", err)
	}

	orders := make([]domain.SwapOrder, 0, len(list))
	for _, n := range list {
		o, err := domain.SwapOrderFromNote(n)
		if err != nil {
			log.WithError(err).Debugf("skipping note %s", n.Id)
			continue
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// bookTag returns the tag of the orders a candidate can trade against:
// those offering the candidate's target asset for its source one.
func bookTag(candidate domain.ClientOrder) notes.NoteTag {
	return notes.DeriveTag(candidate.Target.AssetID, candidate.Source.AssetID)
}

func clientOrders(list []domain.SwapOrder) []domain.ClientOrder {
	orders := make([]domain.ClientOrder, 0, len(list))
	for _, o := range list {
		orders = append(orders, domain.ClientOrderFromSwapOrder(o))
	}
	return orders
}

func consumeRequest(
	consumer notes.AccountID, noteId notes.Word, requestedFill uint64,
	expected []notes.Word,
) ports.ConsumeRequest {
	return ports.ConsumeRequest{
		Consumer:        consumer,
		NoteId:          noteId,
		RequestedFill:   requestedFill,
		ExpectedOutputs: expected,
	}
}
