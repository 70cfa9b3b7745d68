package domain

import (
	"fmt"

	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

const (
	NoteKindUnknown = iota
	NoteKindSwap
	NoteKindPayment
)

// Note is the ledger representation of any note: a script, its inputs, the
// serial number of the note and the asset it carries. It is what the
// settlement layer stores and what discovery returns.
type Note struct {
	Id     notes.Word
	Sender notes.AccountID
	Tag    notes.NoteTag
	Serial notes.Word
	Script notes.Word
	Inputs []uint64
	Asset  AssetAmount
}

// NewNote builds a note and computes its id.
func NewNote(
	sender notes.AccountID, tag notes.NoteTag,
	serial, script notes.Word, inputs []uint64, asset AssetAmount,
) Note {
	n := Note{
		Sender: sender,
		Tag:    tag,
		Serial: serial,
		Script: script,
		Inputs: append([]uint64{}, inputs...),
		Asset:  asset,
	}
	n.Id = n.ComputeId()
	return n
}

// Recipient returns the recipient commitment of the note.
func (n Note) Recipient() notes.Word {
	return notes.Recipient(n.Serial, n.Script, n.Inputs)
}

// ComputeId recomputes the id of the note from its content.
func (n Note) ComputeId() notes.Word {
	return notes.NoteID(n.Recipient(), notes.AssetsCommitment(n.Asset.Word()))
}

// Kind returns the kind of note based on its script.
func (n Note) Kind() int {
	switch n.Script {
	case notes.SwapScriptRoot:
		return NoteKindSwap
	case notes.PaymentScriptRoot:
		return NoteKindPayment
	default:
		return NoteKindUnknown
	}
}

// IsSwap returns whether the note is a swap order note.
func (n Note) IsSwap() bool {
	return n.Kind() == NoteKindSwap
}

// IsPayment returns whether the note is a payment note.
func (n Note) IsPayment() bool {
	return n.Kind() == NoteKindPayment
}

// Verify checks that the presented id matches the note content and that
// the note carries a valid asset.
func (n Note) Verify() error {
	if id := n.ComputeId(); id != n.Id {
		return fmt.Errorf(
			"%w: presented %s, computed %s", ErrCommitmentMismatch, n.Id, id,
		)
	}
	return n.Asset.Validate()
}

// NoteIds returns the ids of the given notes.
func NoteIds(list []Note) []notes.Word {
	ids := make([]notes.Word, 0, len(list))
	for _, n := range list {
		ids = append(ids, n.Id)
	}
	return ids
}
