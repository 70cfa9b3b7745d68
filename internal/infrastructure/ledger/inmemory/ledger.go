package inmemory

import (
	"context"
	"sync"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	"github.com/compolabs/spark-miden-v1/internal/infrastructure/ledger"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

type balanceKey struct {
	account notes.AccountID
	asset   notes.AccountID
}

type service struct {
	notes    map[notes.Word]domain.Note
	order    []notes.Word
	balances map[balanceKey]uint64
	locker   *sync.Mutex
}

// NewLedger returns a ledger that lives in memory. Every operation holds the
// same lock, so consumptions are serialized.
func NewLedger() ports.Ledger {
	return &service{
		notes:    make(map[notes.Word]domain.Note),
		order:    make([]notes.Word, 0),
		balances: make(map[balanceKey]uint64),
		locker:   &sync.Mutex{},
	}
}

func (s *service) Consume(
	_ context.Context, req ports.ConsumeRequest,
) (*ports.ConsumeResult, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	tx := s.begin()
	res, err := ledger.Consume(tx, req)
	if err != nil {
		return nil, err
	}
	tx.commit()
	return res, nil
}

func (s *service) Publish(
	_ context.Context, account notes.AccountID, list []domain.Note,
) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	tx := s.begin()
	if err := ledger.Publish(tx, account, list); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *service) Mint(
	_ context.Context, faucet, account notes.AccountID, amount uint64,
) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	tx := s.begin()
	if err := ledger.Mint(tx, faucet, account, amount); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *service) QueryByTag(
	_ context.Context, tag notes.NoteTag,
) ([]domain.Note, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	list := make([]domain.Note, 0)
	for _, id := range s.order {
		n, ok := s.notes[id]
		if ok && n.Tag == tag {
			list = append(list, copyNote(n))
		}
	}
	return list, nil
}

func (s *service) GetNote(_ context.Context, id notes.Word) (*domain.Note, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, nil
	}
	cp := copyNote(n)
	return &cp, nil
}

func (s *service) Balance(
	_ context.Context, account, asset notes.AccountID,
) (uint64, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	return s.balances[balanceKey{account, asset}], nil
}

func (s *service) Balances(
	_ context.Context, account notes.AccountID,
) (map[notes.AccountID]uint64, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	balances := make(map[notes.AccountID]uint64)
	for key, amount := range s.balances {
		if key.account == account && amount > 0 {
			balances[key.asset] = amount
		}
	}
	return balances, nil
}

func (s *service) Close() error { return nil }

func (s *service) begin() *txState {
	return &txState{
		s:        s,
		added:    make(map[notes.Word]domain.Note),
		removed:  make(map[notes.Word]bool),
		balances: make(map[balanceKey]uint64),
	}
}

// txState buffers the changes of a single operation so that a failing one
// leaves the ledger untouched.
type txState struct {
	s        *service
	added    map[notes.Word]domain.Note
	addOrder []notes.Word
	removed  map[notes.Word]bool
	balances map[balanceKey]uint64
}

func (t *txState) GetNote(id notes.Word) (*domain.Note, error) {
	if n, ok := t.added[id]; ok {
		return &n, nil
	}
	if t.removed[id] {
		return nil, nil
	}
	if n, ok := t.s.notes[id]; ok {
		cp := copyNote(n)
		return &cp, nil
	}
	return nil, nil
}

func (t *txState) AddNote(n domain.Note) error {
	t.added[n.Id] = copyNote(n)
	t.addOrder = append(t.addOrder, n.Id)
	return nil
}

func (t *txState) RemoveNote(id notes.Word) error {
	if _, ok := t.added[id]; ok {
		delete(t.added, id)
		return nil
	}
	t.removed[id] = true
	return nil
}

func (t *txState) GetBalance(account, asset notes.AccountID) (uint64, error) {
	key := balanceKey{account, asset}
	if amount, ok := t.balances[key]; ok {
		return amount, nil
	}
	return t.s.balances[key], nil
}

func (t *txState) SetBalance(account, asset notes.AccountID, amount uint64) error {
	t.balances[balanceKey{account, asset}] = amount
	return nil
}

func (t *txState) commit() {
	for id := range t.removed {
		delete(t.s.notes, id)
	}
	if len(t.removed) > 0 {
		order := make([]notes.Word, 0, len(t.s.order))
		for _, id := range t.s.order {
			if !t.removed[id] {
				order = append(order, id)
			}
		}
		t.s.order = order
	}
	for _, id := range t.addOrder {
		if n, ok := t.added[id]; ok {
			t.s.notes[id] = n
			t.s.order = append(t.s.order, id)
		}
	}
	for key, amount := range t.balances {
		t.s.balances[key] = amount
	}
}

func copyNote(n domain.Note) domain.Note {
	n.Inputs = append([]uint64{}, n.Inputs...)
	return n
}
