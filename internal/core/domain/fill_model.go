package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

// Fill is the record of a fill applied to an order chain.
type Fill struct {
	Id              string
	OrderId         string
	Filler          notes.AccountID
	FillNumber      uint64
	ConsumedNoteId  string
	Paid            AssetAmount
	Received        AssetAmount
	PaymentNoteId   string
	SuccessorNoteId string
	Timestamp       int64
}

// NewFill returns the record of the given fill of the order instance
// identified by consumedNoteId.
func NewFill(orderId, consumedNoteId string, res *FillResult) *Fill {
	f := &Fill{
		Id:             uuid.New().String(),
		OrderId:        orderId,
		Filler:         res.Filler,
		FillNumber:     res.FillNumber,
		ConsumedNoteId: consumedNoteId,
		Paid:           res.RequestedFill,
		Received:       res.OfferedOut,
		PaymentNoteId:  res.Payment.Id().String(),
		Timestamp:      time.Now().Unix(),
	}
	if res.Successor != nil {
		f.SuccessorNoteId = res.Successor.Id().String()
	}
	return f
}

// IsFullFill returns whether the fill closed the order.
func (f *Fill) IsFullFill() bool {
	return f.SuccessorNoteId == ""
}
