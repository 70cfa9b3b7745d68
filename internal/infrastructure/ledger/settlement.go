// Package ledger holds the settlement rules shared by the local ledger
// implementations. Every function operates on a State that the caller must
// guarantee to be atomic: either all the changes are applied or none.
package ledger

import (
	"fmt"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
	log "github.com/sirupsen/logrus"
)

// State is the view of the ledger within a single atomic unit of work.
type State interface {
	// GetNote returns the live note with the given id, or nil.
	GetNote(id notes.Word) (*domain.Note, error)
	AddNote(n domain.Note) error
	RemoveNote(id notes.Word) error
	GetBalance(account, asset notes.AccountID) (uint64, error)
	SetBalance(account, asset notes.AccountID, amount uint64) error
}

// Consume applies the consumption of a note:
//   - a payment note can be consumed only by its target;
//   - a swap note consumed by its creator is reclaimed;
//   - a swap note consumed by anyone else is filled for req.RequestedFill.
func Consume(state State, req ports.ConsumeRequest) (*ports.ConsumeResult, error) {
	n, err := state.GetNote(req.NoteId)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf(
			"%w: note %s does not exist or was consumed", domain.ErrStaleOrder, req.NoteId,
		)
	}
	if err := n.Verify(); err != nil {
		return nil, err
	}

	switch n.Kind() {
	case domain.NoteKindPayment:
		return consumePayment(state, *n, req)
	case domain.NoteKindSwap:
		order, err := domain.SwapOrderFromNote(*n)
		if err != nil {
			return nil, err
		}
		if order.IsCreator(req.Consumer) {
			return reclaimOrder(state, *n, *order, req)
		}
		return fillOrder(state, *n, *order, req)
	default:
		return nil, fmt.Errorf("%w: unknown note script", domain.ErrInvalidNote)
	}
}

// Publish emits the given notes funding them from the vault of account.
func Publish(state State, account notes.AccountID, list []domain.Note) error {
	for _, n := range list {
		if err := n.Verify(); err != nil {
			return err
		}
		if n.Sender != account {
			return fmt.Errorf(
				"%w: note %s is not sent by %s", domain.ErrUnauthorized, n.Id, account,
			)
		}
		if n.IsSwap() {
			if _, err := domain.SwapOrderFromNote(n); err != nil {
				return err
			}
		}

		existing, err := state.GetNote(n.Id)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: note %s already exists", domain.ErrInvalidNote, n.Id)
		}

		if err := debit(state, account, n.Asset); err != nil {
			return err
		}
		if err := state.AddNote(n); err != nil {
			return err
		}
		log.Debugf("ledger: published note %s by %s", n.Id, account)
	}
	return nil
}

// Mint credits amount of the asset issued by faucet to account.
func Mint(state State, faucet, account notes.AccountID, amount uint64) error {
	asset, err := domain.NewAssetAmount(faucet, amount)
	if err != nil {
		return err
	}
	return credit(state, account, asset)
}

func consumePayment(
	state State, n domain.Note, req ports.ConsumeRequest,
) (*ports.ConsumeResult, error) {
	payment, err := domain.PaymentNoteFromNote(n)
	if err != nil {
		return nil, err
	}
	if payment.Target != req.Consumer {
		return nil, fmt.Errorf(
			"%w: payment note is addressed to %s", domain.ErrUnauthorized, payment.Target,
		)
	}

	if err := state.RemoveNote(n.Id); err != nil {
		return nil, err
	}
	if err := credit(state, req.Consumer, payment.Asset); err != nil {
		return nil, err
	}

	log.Debugf("ledger: payment note %s consumed by %s", n.Id, req.Consumer)
	return &ports.ConsumeResult{
		ConsumedNote: n,
		Credited:     payment.Asset,
	}, nil
}

func reclaimOrder(
	state State, n domain.Note, order domain.SwapOrder, req ports.ConsumeRequest,
) (*ports.ConsumeResult, error) {
	amount, err := order.Reclaim(req.Consumer)
	if err != nil {
		return nil, err
	}
	if len(req.ExpectedOutputs) > 0 {
		return nil, fmt.Errorf(
			"%w: reclaim emits no notes", domain.ErrCommitmentMismatch,
		)
	}

	if err := state.RemoveNote(n.Id); err != nil {
		return nil, err
	}
	if err := credit(state, req.Consumer, amount); err != nil {
		return nil, err
	}

	log.Debugf("ledger: order note %s reclaimed by %s", n.Id, req.Consumer)
	return &ports.ConsumeResult{
		ConsumedNote: n,
		Credited:     amount,
	}, nil
}

func fillOrder(
	state State, n domain.Note, order domain.SwapOrder, req ports.ConsumeRequest,
) (*ports.ConsumeResult, error) {
	res, err := order.Fill(req.Consumer, req.RequestedFill)
	if err != nil {
		return nil, err
	}

	outputs := res.OutputNotes()
	if len(req.ExpectedOutputs) > 0 {
		if err := checkOutputs(req.ExpectedOutputs, outputs); err != nil {
			return nil, err
		}
	}

	if err := debit(state, req.Consumer, res.RequestedFill); err != nil {
		return nil, err
	}
	if err := state.RemoveNote(n.Id); err != nil {
		return nil, err
	}
	for _, out := range outputs {
		if err := state.AddNote(out); err != nil {
			return nil, err
		}
	}
	if err := credit(state, req.Consumer, res.OfferedOut); err != nil {
		return nil, err
	}

	log.Debugf(
		"ledger: order note %s filled #%d by %s for %s",
		n.Id, res.FillNumber, req.Consumer, res.RequestedFill,
	)
	debited := res.RequestedFill
	return &ports.ConsumeResult{
		ConsumedNote: n,
		Credited:     res.OfferedOut,
		Debited:      &debited,
		OutputNotes:  outputs,
	}, nil
}

func checkOutputs(expected []notes.Word, outputs []domain.Note) error {
	if len(expected) != len(outputs) {
		return fmt.Errorf(
			"%w: expected %d output notes, got %d",
			domain.ErrCommitmentMismatch, len(outputs), len(expected),
		)
	}
	for i, out := range outputs {
		if expected[i] != out.Id {
			return fmt.Errorf(
				"%w: output note #%d is %s, got %s",
				domain.ErrCommitmentMismatch, i, out.Id, expected[i],
			)
		}
	}
	return nil
}

func credit(state State, account notes.AccountID, asset domain.AssetAmount) error {
	balance, err := state.GetBalance(account, asset.AssetID)
	if err != nil {
		return err
	}
	if asset.Amount > domain.MaxAssetAmount-balance {
		return fmt.Errorf(
			"%w: balance of %s would exceed the max amount",
			domain.ErrAmountTooLarge, asset.AssetID,
		)
	}
	return state.SetBalance(account, asset.AssetID, balance+asset.Amount)
}

func debit(state State, account notes.AccountID, asset domain.AssetAmount) error {
	balance, err := state.GetBalance(account, asset.AssetID)
	if err != nil {
		return err
	}
	if balance < asset.Amount {
		return fmt.Errorf(
			"%w: %s has %d of %s, needs %d",
			domain.ErrInsufficientBalance, account, balance, asset.AssetID, asset.Amount,
		)
	}
	return state.SetBalance(account, asset.AssetID, balance-asset.Amount)
}
