package ports

import (
	"context"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

// Ledger groups the collaborators exposed by the settlement layer.
type Ledger interface {
	SettlementExecutor
	NoteDiscovery
	BalanceOracle
	FundingService
	Close() error
}

// ConsumeRequest asks the settlement layer to consume a note on behalf of
// Consumer. RequestedFill is only meaningful when filling a swap order, and
// ExpectedOutputs, if not empty, are the ids of the notes the consumer
// computed locally: the settlement fails if they don't match.
type ConsumeRequest struct {
	Consumer        notes.AccountID
	NoteId          notes.Word
	RequestedFill   uint64
	ExpectedOutputs []notes.Word
}

// ConsumeResult reports the effects of a successful consumption.
type ConsumeResult struct {
	ConsumedNote domain.Note
	Credited     domain.AssetAmount
	Debited      *domain.AssetAmount
	OutputNotes  []domain.Note
}

// SettlementExecutor atomically consumes and emits notes. A note can be
// consumed exactly once: any attempt on a note that doesn't exist anymore
// fails with domain.ErrStaleOrder.
type SettlementExecutor interface {
	Consume(ctx context.Context, req ConsumeRequest) (*ConsumeResult, error)
	// Publish emits the given notes funding them from the vault of account.
	Publish(ctx context.Context, account notes.AccountID, list []domain.Note) error
}

// NoteDiscovery returns the unconsumed notes known by the settlement layer.
type NoteDiscovery interface {
	QueryByTag(ctx context.Context, tag notes.NoteTag) ([]domain.Note, error)
	GetNote(ctx context.Context, id notes.Word) (*domain.Note, error)
}

// BalanceOracle returns vault balances.
type BalanceOracle interface {
	Balance(ctx context.Context, account, asset notes.AccountID) (uint64, error)
	Balances(ctx context.Context, account notes.AccountID) (map[notes.AccountID]uint64, error)
}

// FundingService mints assets into accounts.
type FundingService interface {
	Mint(ctx context.Context, faucet, account notes.AccountID, amount uint64) error
}

// SerialSource provides the fresh random base serials of new orders.
type SerialSource interface {
	NewSerial() (notes.Word, error)
}
