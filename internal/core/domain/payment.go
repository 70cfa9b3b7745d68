package domain

import (
	"fmt"

	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

const paymentInputsLen = 1

// PaymentNote carries the requested asset paid in by a filler to the order
// creator. Its serial is derived from the order chain, so anyone knowing the
// base serial and the fill number can re-derive its id.
type PaymentNote struct {
	Sender notes.AccountID
	Target notes.AccountID
	Asset  AssetAmount
	Serial notes.Word
}

// NewPaymentNote returns the payment note emitted by the k-th fill of the
// order rooted at baseSerial.
func NewPaymentNote(
	sender, target notes.AccountID, asset AssetAmount, baseSerial notes.Word, k uint64,
) PaymentNote {
	return PaymentNote{
		Sender: sender,
		Target: target,
		Asset:  asset,
		Serial: notes.DeriveChainSerial(baseSerial, k),
	}
}

// Inputs returns the note inputs in wire layout: [target].
func (p PaymentNote) Inputs() []uint64 {
	return []uint64{uint64(p.Target)}
}

// Note returns the ledger note of the payment.
func (p PaymentNote) Note() Note {
	return NewNote(
		p.Sender, notes.AccountTag(p.Target), p.Serial, notes.PaymentScriptRoot,
		p.Inputs(), p.Asset,
	)
}

// Id returns the note id of the payment.
func (p PaymentNote) Id() notes.Word {
	return p.Note().Id
}

// PaymentNoteFromNote decodes a payment from a payment note.
func PaymentNoteFromNote(n Note) (*PaymentNote, error) {
	if !n.IsPayment() {
		return nil, fmt.Errorf("%w: not a payment note", ErrInvalidNote)
	}
	if len(n.Inputs) != paymentInputsLen {
		return nil, fmt.Errorf(
			"%w: expected %d inputs, got %d", ErrInvalidNote, paymentInputsLen, len(n.Inputs),
		)
	}
	if err := n.Verify(); err != nil {
		return nil, err
	}

	return &PaymentNote{
		Sender: n.Sender,
		Target: notes.AccountID(n.Inputs[0]),
		Asset:  n.Asset,
		Serial: n.Serial,
	}, nil
}
