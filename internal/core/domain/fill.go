package domain

import (
	"errors"
	"fmt"

	"github.com/compolabs/spark-miden-v1/pkg/mathutil"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

// FillResult is the outcome of a fill: what the filler receives, the payment
// note addressed to the creator and the successor order, if any.
type FillResult struct {
	Filler        notes.AccountID
	FillNumber    uint64
	RequestedFill AssetAmount
	OfferedOut    AssetAmount
	Payment       PaymentNote
	Successor     *SwapOrder
}

// IsFullFill returns whether the fill exhausted the order.
func (r *FillResult) IsFullFill() bool {
	return r.Successor == nil
}

// OutputNotes returns the notes the settlement layer must emit, payment
// note first.
func (r *FillResult) OutputNotes() []Note {
	out := []Note{r.Payment.Note()}
	if r.Successor != nil {
		out = append(out, r.Successor.Note())
	}
	return out
}

// ComputeFillAmount returns the amount of offered asset released against
// requestedFill units of requested asset, floor(offeredTotal *
// requestedFill / requestedTotal). Invalid fills are rejected, never
// clamped.
func ComputeFillAmount(offeredTotal, requestedTotal, requestedFill uint64) (uint64, error) {
	if offeredTotal == 0 || requestedTotal == 0 || requestedFill == 0 {
		return 0, ErrZeroAmount
	}
	if requestedFill > requestedTotal {
		return 0, ErrOverFill
	}

	offeredOut, err := mathutil.FillAmount(offeredTotal, requestedTotal, requestedFill)
	if err != nil {
		if errors.Is(err, mathutil.ErrUnsafeAmount) {
			return 0, ErrAmountTooLarge
		}
		return 0, err
	}
	if offeredOut == 0 {
		return 0, fmt.Errorf("%w: fill releases no offered asset", ErrZeroAmount)
	}
	return offeredOut, nil
}

// Fill computes the fill of the order by filler for requestedFill units of
// the requested asset. The order itself is left untouched.
func (o SwapOrder) Fill(filler notes.AccountID, requestedFill uint64) (*FillResult, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.IsCreator(filler) {
		return nil, fmt.Errorf("%w: creator must reclaim the order", ErrUnauthorized)
	}

	offeredOut, err := ComputeFillAmount(
		o.Offered.Amount, o.Requested.Amount, requestedFill,
	)
	if err != nil {
		return nil, err
	}

	k := o.FillNumber + 1
	paid := AssetAmount{o.Requested.AssetID, requestedFill}
	result := &FillResult{
		Filler:        filler,
		FillNumber:    k,
		RequestedFill: paid,
		OfferedOut:    AssetAmount{o.Offered.AssetID, offeredOut},
		Payment:       NewPaymentNote(filler, o.Creator, paid, o.BaseSerial, k),
	}

	if requestedRemaining := o.Requested.Amount - requestedFill; requestedRemaining > 0 {
		result.Successor = &SwapOrder{
			Creator:      o.Creator,
			Offered:      AssetAmount{o.Offered.AssetID, o.Offered.Amount - offeredOut},
			Requested:    AssetAmount{o.Requested.AssetID, requestedRemaining},
			BaseSerial:   o.BaseSerial,
			FillNumber:   k,
			LastConsumer: filler,
		}
	}
	return result, nil
}

// Reclaim returns the offered remaining to the creator. Only the creator can
// reclaim, and no note is emitted.
func (o SwapOrder) Reclaim(caller notes.AccountID) (AssetAmount, error) {
	if !o.IsCreator(caller) {
		return AssetAmount{}, fmt.Errorf(
			"%w: %s is not the creator of the order", ErrUnauthorized, caller,
		)
	}
	return o.Offered, nil
}

// ComputeFill computes the fill of order by filler.
func ComputeFill(
	order SwapOrder, filler notes.AccountID, requestedFill uint64,
) (*FillResult, error) {
	return order.Fill(filler, requestedFill)
}

// Reclaim reclaims order on behalf of caller.
func Reclaim(order SwapOrder, caller notes.AccountID) (AssetAmount, error) {
	return order.Reclaim(caller)
}
