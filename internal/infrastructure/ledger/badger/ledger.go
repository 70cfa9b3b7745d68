package ledgerbadger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	"github.com/compolabs/spark-miden-v1/internal/infrastructure/ledger"
	dbbadger "github.com/compolabs/spark-miden-v1/internal/infrastructure/storage/db/badger"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

const (
	ledgerDbDir = "ledger"
	noteSeqKey  = "note_seq"
)

// noteRecord is how a live note is stored. Seq keeps the emission order,
// discovery returns notes in that order.
type noteRecord struct {
	Id   string
	Tag  notes.NoteTag
	Seq  uint64
	Note domain.Note
}

type balanceRecord struct {
	Account notes.AccountID
	Asset   notes.AccountID
	Amount  uint64
}

type service struct {
	store *badgerhold.Store
	seq   *badger.Sequence
}

// NewLedger opens (or creates if not exists) a ledger persisted in
// baseDbDir, or in memory if baseDbDir is empty. Every operation runs in a
// badger transaction: concurrent operations touching the same notes or
// balances conflict and only one of them is committed.
func NewLedger(baseDbDir string, logger badger.Logger) (ports.Ledger, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, ledgerDbDir)
	}

	store, err := dbbadger.CreateDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	seq, err := store.Badger().GetSequence([]byte(noteSeqKey), 100)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening ledger sequence: %w", err)
	}

	return &service{store, seq}, nil
}

func (s *service) Consume(
	_ context.Context, req ports.ConsumeRequest,
) (*ports.ConsumeResult, error) {
	var res *ports.ConsumeResult
	err := s.update(func(st *txState) error {
		r, err := ledger.Consume(st, req)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) Publish(
	_ context.Context, account notes.AccountID, list []domain.Note,
) error {
	return s.update(func(st *txState) error {
		return ledger.Publish(st, account, list)
	})
}

func (s *service) Mint(
	_ context.Context, faucet, account notes.AccountID, amount uint64,
) error {
	return s.update(func(st *txState) error {
		return ledger.Mint(st, faucet, account, amount)
	})
}

func (s *service) QueryByTag(
	_ context.Context, tag notes.NoteTag,
) ([]domain.Note, error) {
	var records []noteRecord
	if err := s.store.Find(&records, badgerhold.Where("Tag").Eq(tag)); err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})

	list := make([]domain.Note, 0, len(records))
	for _, r := range records {
		list = append(list, r.Note)
	}
	return list, nil
}

func (s *service) GetNote(_ context.Context, id notes.Word) (*domain.Note, error) {
	var record noteRecord
	if err := s.store.Get(id.String(), &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record.Note, nil
}

func (s *service) Balance(
	_ context.Context, account, asset notes.AccountID,
) (uint64, error) {
	var record balanceRecord
	if err := s.store.Get(balanceKey(account, asset), &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return record.Amount, nil
}

func (s *service) Balances(
	_ context.Context, account notes.AccountID,
) (map[notes.AccountID]uint64, error) {
	var records []balanceRecord
	if err := s.store.Find(
		&records, badgerhold.Where("Account").Eq(account),
	); err != nil {
		return nil, err
	}

	balances := make(map[notes.AccountID]uint64)
	for _, r := range records {
		if r.Amount > 0 {
			balances[r.Asset] = r.Amount
		}
	}
	return balances, nil
}

func (s *service) Close() error {
	if err := s.seq.Release(); err != nil {
		return err
	}
	return s.store.Close()
}

func (s *service) update(handler func(st *txState) error) error {
	err := s.store.Badger().Update(func(tx *badger.Txn) error {
		return handler(&txState{s, tx})
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf(
			"%w: concurrent update of the same notes", domain.ErrStaleOrder,
		)
	}
	return err
}

type txState struct {
	s  *service
	tx *badger.Txn
}

func (t *txState) GetNote(id notes.Word) (*domain.Note, error) {
	var record noteRecord
	if err := t.s.store.TxGet(t.tx, id.String(), &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record.Note, nil
}

func (t *txState) AddNote(n domain.Note) error {
	seq, err := t.s.seq.Next()
	if err != nil {
		return err
	}
	record := noteRecord{n.Id.String(), n.Tag, seq, n}
	return t.s.store.TxInsert(t.tx, record.Id, record)
}

func (t *txState) RemoveNote(id notes.Word) error {
	return t.s.store.TxDelete(t.tx, id.String(), noteRecord{})
}

func (t *txState) GetBalance(account, asset notes.AccountID) (uint64, error) {
	var record balanceRecord
	if err := t.s.store.TxGet(t.tx, balanceKey(account, asset), &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return record.Amount, nil
}

func (t *txState) SetBalance(account, asset notes.AccountID, amount uint64) error {
	record := balanceRecord{account, asset, amount}
	return t.s.store.TxUpsert(t.tx, balanceKey(account, asset), record)
}

func balanceKey(account, asset notes.AccountID) string {
	return fmt.Sprintf("%s:%s", account, asset)
}
