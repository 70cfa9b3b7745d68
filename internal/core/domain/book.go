package domain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/compolabs/spark-miden-v1/pkg/mathutil"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

// ClientOrder is the trader facing view of an order: the asset the order
// gives out (Source) and the asset it wants (Target).
type ClientOrder struct {
	Id     notes.Word
	Source AssetAmount
	Target AssetAmount
}

// ClientOrderFromSwapOrder returns the client view of an order instance.
func ClientOrderFromSwapOrder(o SwapOrder) ClientOrder {
	return ClientOrder{
		Id:     o.Id(),
		Source: o.Offered,
		Target: o.Requested,
	}
}

// Price returns the units of target asset wanted per unit of source asset.
func (o ClientOrder) Price() decimal.Decimal {
	return mathutil.Div(o.Target.Amount, o.Source.Amount)
}

// Validate checks that the order has non zero amounts on both sides of
// distinct assets.
func (o ClientOrder) Validate() error {
	if err := o.Source.Validate(); err != nil {
		return fmt.Errorf("source asset: %w", err)
	}
	if err := o.Target.Validate(); err != nil {
		return fmt.Errorf("target asset: %w", err)
	}
	if o.Source.SameAsset(o.Target) {
		return fmt.Errorf("%w: source and target asset are the same", ErrAssetsNotMatching)
	}
	return nil
}

// MatchOrders returns whether existing is acceptable to candidate. The
// assets must be crossed and existing must give at least as much source per
// unit of target as candidate asks for:
// existing.Target/existing.Source <= candidate.Source/candidate.Target.
func MatchOrders(existing, candidate ClientOrder) error {
	if existing.Source.AssetID != candidate.Target.AssetID ||
		existing.Target.AssetID != candidate.Source.AssetID {
		return ErrAssetsNotMatching
	}
	if existing.Source.Amount == 0 || existing.Target.Amount == 0 ||
		candidate.Source.Amount == 0 || candidate.Target.Amount == 0 {
		return ErrZeroAmount
	}

	if mathutil.CmpMul(
		existing.Target.Amount, candidate.Target.Amount,
		existing.Source.Amount, candidate.Source.Amount,
	) > 0 {
		return ErrPriceViolation
	}
	return nil
}

// SortOrders ranks orders by ascending price. Orders with the same price
// keep their discovery order.
func SortOrders(orders []ClientOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		return mathutil.CmpMul(
			a.Target.Amount, b.Source.Amount, b.Target.Amount, a.Source.Amount,
		) < 0
	})
}

// BuildBook returns the discovered orders acceptable to candidate, ranked
// best first. Orders on other pairs or at a worse price are skipped.
func BuildBook(candidate ClientOrder, discovered []ClientOrder) ([]ClientOrder, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	book := make([]ClientOrder, 0, len(discovered))
	for _, o := range discovered {
		if err := MatchOrders(o, candidate); err != nil {
			if errors.Is(err, ErrAssetsNotMatching) ||
				errors.Is(err, ErrPriceViolation) ||
				errors.Is(err, ErrZeroAmount) {
				continue
			}
			return nil, err
		}
		book = append(book, o)
	}
	SortOrders(book)
	return book, nil
}

// SelectBest returns the best ranked order of the book.
func SelectBest(book []ClientOrder) (ClientOrder, error) {
	if len(book) == 0 {
		return ClientOrder{}, ErrNoMatchingOrders
	}
	return book[0], nil
}

// FillAmountFor returns how much of the existing order's target asset the
// candidate pays in: the whole remaining of existing, or everything the
// candidate offers if that is less.
func FillAmountFor(existing, candidate ClientOrder) uint64 {
	if candidate.Source.Amount < existing.Target.Amount {
		return candidate.Source.Amount
	}
	return existing.Target.Amount
}
