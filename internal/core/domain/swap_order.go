package domain

import (
	"fmt"

	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

// Positions of the swap order note inputs.
const (
	swapInputRequestedAmount = 0
	swapInputRequestedAsset  = 3
	swapInputTag             = 4
	swapInputFillNumber      = 8
	swapInputCreator         = 12

	swapInputsLen = 13
)

// SwapOrder is one instance of a partially fillable order. Instances are
// immutable: a fill produces a new instance with the next fill number, the
// reduced amounts and the same base serial, so the identity of an order is
// the chain of instances rooted at BaseSerial.
type SwapOrder struct {
	Creator      notes.AccountID
	Offered      AssetAmount
	Requested    AssetAmount
	BaseSerial   notes.Word
	FillNumber   uint64
	LastConsumer notes.AccountID
}

// NewSwapOrder returns fill #0 of a new order. baseSerial must be a fresh
// random word provided by the caller.
func NewSwapOrder(
	creator notes.AccountID, offered, requested AssetAmount, baseSerial notes.Word,
) (*SwapOrder, error) {
	o := &SwapOrder{
		Creator:      creator,
		Offered:      offered,
		Requested:    requested,
		BaseSerial:   baseSerial,
		LastConsumer: creator,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks the invariants of a live order instance.
func (o SwapOrder) Validate() error {
	if err := o.Offered.Validate(); err != nil {
		return fmt.Errorf("offered asset: %w", err)
	}
	if err := o.Requested.Validate(); err != nil {
		return fmt.Errorf("requested asset: %w", err)
	}
	if o.Offered.SameAsset(o.Requested) {
		return fmt.Errorf("%w: offered and requested asset are the same", ErrInvalidNote)
	}
	if o.BaseSerial.IsZero() {
		return fmt.Errorf("%w: missing base serial", ErrInvalidNote)
	}
	return nil
}

// Tag returns the discovery tag of the order.
func (o SwapOrder) Tag() notes.NoteTag {
	return notes.DeriveTag(o.Offered.AssetID, o.Requested.AssetID)
}

// Inputs returns the note inputs in wire layout:
// [requested word, tag, 0, 0, 0, fill number, 0, 0, 0, creator].
func (o SwapOrder) Inputs() []uint64 {
	inputs := make([]uint64, swapInputsLen)
	requested := o.Requested.Word()
	copy(inputs[:4], requested[:])
	inputs[swapInputTag] = uint64(o.Tag())
	inputs[swapInputFillNumber] = o.FillNumber
	inputs[swapInputCreator] = uint64(o.Creator)
	return inputs
}

// Note returns the ledger note of this order instance.
func (o SwapOrder) Note() Note {
	return NewNote(
		o.LastConsumer, o.Tag(), o.BaseSerial, notes.SwapScriptRoot,
		o.Inputs(), o.Offered,
	)
}

// Id returns the note id of this order instance.
func (o SwapOrder) Id() notes.Word {
	return o.Note().Id
}

// IsCreator returns whether account created the order.
func (o SwapOrder) IsCreator(account notes.AccountID) bool {
	return o.Creator == account
}

// SwapOrderFromNote decodes an order instance from a swap note.
func SwapOrderFromNote(n Note) (*SwapOrder, error) {
	if !n.IsSwap() {
		return nil, fmt.Errorf("%w: not a swap note", ErrInvalidNote)
	}
	if len(n.Inputs) != swapInputsLen {
		return nil, fmt.Errorf(
			"%w: expected %d inputs, got %d", ErrInvalidNote, swapInputsLen, len(n.Inputs),
		)
	}

	o := &SwapOrder{
		Creator: notes.AccountID(n.Inputs[swapInputCreator]),
		Offered: n.Asset,
		Requested: AssetAmount{
			AssetID: notes.AccountID(n.Inputs[swapInputRequestedAsset]),
			Amount:  n.Inputs[swapInputRequestedAmount],
		},
		BaseSerial:   n.Serial,
		FillNumber:   n.Inputs[swapInputFillNumber],
		LastConsumer: n.Sender,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if notes.NoteTag(n.Inputs[swapInputTag]) != o.Tag() || n.Tag != o.Tag() {
		return nil, fmt.Errorf("%w: tag does not match assets", ErrInvalidNote)
	}
	if id := o.Id(); id != n.Id {
		return nil, fmt.Errorf(
			"%w: presented %s, computed %s", ErrCommitmentMismatch, n.Id, id,
		)
	}
	return o, nil
}
