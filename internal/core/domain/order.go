package domain

import (
	"fmt"
	"time"

	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

const (
	OrderStatusCodeOpen = iota
	OrderStatusCodeFilled
	OrderStatusCodeReclaimed
)

// OrderStatus represents the different statuses that an order chain can
// assume.
type OrderStatus struct {
	Code int
}

func (s OrderStatus) String() string {
	switch s.Code {
	case OrderStatusCodeOpen:
		return "OPEN"
	case OrderStatusCodeFilled:
		return "FILLED"
	case OrderStatusCodeReclaimed:
		return "RECLAIMED"
	default:
		return "UNKNOWN"
	}
}

// Order is the local record of an order chain, identified by its base
// serial. It tracks the live instance and the aggregated fill progress.
type Order struct {
	Id               string
	Creator          notes.AccountID
	OfferedAsset     notes.AccountID
	RequestedAsset   notes.AccountID
	InitialOffered   uint64
	InitialRequested uint64
	Current          SwapOrder
	CurrentNoteId    string
	FillCount        uint64
	Status           OrderStatus
	CreationTime     int64
	UpdateTime       int64
}

// NewOrder returns an open order record for the given order instance.
func NewOrder(o SwapOrder) (*Order, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().Unix()
	return &Order{
		Id:               o.BaseSerial.String(),
		Creator:          o.Creator,
		OfferedAsset:     o.Offered.AssetID,
		RequestedAsset:   o.Requested.AssetID,
		InitialOffered:   o.Offered.Amount,
		InitialRequested: o.Requested.Amount,
		Current:          o,
		CurrentNoteId:    o.Id().String(),
		FillCount:        o.FillNumber,
		Status:           OrderStatus{OrderStatusCodeOpen},
		CreationTime:     now,
		UpdateTime:       now,
	}, nil
}

// ApplyFill moves the record to the successor instance of the fill, or
// marks the order as filled if there is none. The fill must be the next one
// of the current instance.
func (o *Order) ApplyFill(res *FillResult) error {
	if !o.IsOpen() {
		return ErrOrderClosed
	}
	if res.FillNumber != o.Current.FillNumber+1 {
		return fmt.Errorf(
			"%w: expected fill #%d, got #%d",
			ErrStaleOrder, o.Current.FillNumber+1, res.FillNumber,
		)
	}

	o.FillCount = res.FillNumber
	o.UpdateTime = time.Now().Unix()
	if res.IsFullFill() {
		o.Status.Code = OrderStatusCodeFilled
		o.Current.Offered.Amount -= res.OfferedOut.Amount
		o.Current.Requested.Amount = 0
		o.Current.FillNumber = res.FillNumber
		o.Current.LastConsumer = res.Filler
		o.CurrentNoteId = ""
		return nil
	}

	if res.Successor.BaseSerial != o.Current.BaseSerial {
		return fmt.Errorf("%w: successor belongs to another order", ErrInvalidNote)
	}
	o.Current = *res.Successor
	o.CurrentNoteId = res.Successor.Id().String()
	return nil
}

// Sync replaces the current instance with a newer one observed on the
// ledger, for example after a fill made by somebody else.
func (o *Order) Sync(instance SwapOrder) error {
	if !o.IsOpen() {
		return ErrOrderClosed
	}
	if instance.BaseSerial != o.Current.BaseSerial {
		return fmt.Errorf("%w: instance belongs to another order", ErrInvalidNote)
	}
	if instance.FillNumber < o.Current.FillNumber {
		return nil
	}
	o.Current = instance
	o.CurrentNoteId = instance.Id().String()
	o.FillCount = instance.FillNumber
	o.UpdateTime = time.Now().Unix()
	return nil
}

// Reclaim marks the order as reclaimed by its creator.
func (o *Order) Reclaim(caller notes.AccountID) (AssetAmount, error) {
	if !o.IsOpen() {
		return AssetAmount{}, ErrOrderClosed
	}
	amount, err := o.Current.Reclaim(caller)
	if err != nil {
		return AssetAmount{}, err
	}
	o.Status.Code = OrderStatusCodeReclaimed
	o.CurrentNoteId = ""
	o.UpdateTime = time.Now().Unix()
	return amount, nil
}

// IsOpen returns whether the order can still be filled or reclaimed.
func (o *Order) IsOpen() bool {
	return o.Status.Code == OrderStatusCodeOpen
}

// IsFilled returns whether the order has been fully filled.
func (o *Order) IsFilled() bool {
	return o.Status.Code == OrderStatusCodeFilled
}

// IsReclaimed returns whether the order has been reclaimed by its creator.
func (o *Order) IsReclaimed() bool {
	return o.Status.Code == OrderStatusCodeReclaimed
}

// FilledAmount returns how much of the requested asset has been paid in.
func (o *Order) FilledAmount() uint64 {
	return o.InitialRequested - o.Current.Requested.Amount
}
