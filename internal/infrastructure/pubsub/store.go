package pubsub

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	dbbadger "github.com/compolabs/spark-miden-v1/internal/infrastructure/storage/db/badger"
	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

// SubscriptionStore persists the subscriptions of the pubsub service.
type SubscriptionStore interface {
	ports.PubSubStore
	Add(sub Subscription) error
	Remove(id string) (*Subscription, error)
	// ListForTopic returns the subscriptions for the given topic sorted by
	// creation. The unspecified topic returns all of them.
	ListForTopic(topic string) ([]Subscription, error)
}

type badgerStore struct {
	store *badgerhold.Store
}

// NewBadgerStore returns a store persisted in dbDir, or in memory if dbDir
// is empty.
func NewBadgerStore(dbDir string, logger badger.Logger) (SubscriptionStore, error) {
	store, err := dbbadger.CreateDb(dbDir, logger)
	if err != nil {
		return nil, err
	}
	return &badgerStore{store}, nil
}

func (s *badgerStore) Add(sub Subscription) error {
	if sub.Created == 0 {
		sub.Created = time.Now().UnixNano()
	}
	err := s.store.Insert(sub.ID, sub)
	if errors.Is(err, badgerhold.ErrKeyExists) {
		return nil
	}
	return err
}

func (s *badgerStore) Remove(id string) (*Subscription, error) {
	var sub Subscription
	if err := s.store.Get(id, &sub); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if err := s.store.Delete(id, Subscription{}); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *badgerStore) ListForTopic(topic string) ([]Subscription, error) {
	var query *badgerhold.Query
	if topic != ports.UnspecifiedTopic {
		query = badgerhold.Where("Event").Eq(topic)
	}

	var subs []Subscription
	if err := s.store.Find(&subs, query); err != nil {
		return nil, err
	}
	sortSubscriptions(subs)
	return subs, nil
}

func (s *badgerStore) Close() error {
	return s.store.Close()
}

type inmemoryStore struct {
	subs   map[string]Subscription
	locker *sync.Mutex
}

// NewInmemoryStore returns a store that lives in memory.
func NewInmemoryStore() SubscriptionStore {
	return &inmemoryStore{map[string]Subscription{}, &sync.Mutex{}}
}

func (s *inmemoryStore) Add(sub Subscription) error {
	s.locker.Lock()
	defer s.locker.Unlock()

	if _, ok := s.subs[sub.ID]; ok {
		return nil
	}
	if sub.Created == 0 {
		sub.Created = time.Now().UnixNano()
	}
	s.subs[sub.ID] = sub
	return nil
}

func (s *inmemoryStore) Remove(id string) (*Subscription, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	delete(s.subs, id)
	return &sub, nil
}

func (s *inmemoryStore) ListForTopic(topic string) ([]Subscription, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	subs := make([]Subscription, 0)
	for _, sub := range s.subs {
		if topic == ports.UnspecifiedTopic || sub.Event == topic {
			subs = append(subs, sub)
		}
	}
	sortSubscriptions(subs)
	return subs, nil
}

func (s *inmemoryStore) Close() error { return nil }

func sortSubscriptions(subs []Subscription) {
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].Created == subs[j].Created {
			return subs[i].ID < subs[j].ID
		}
		return subs[i].Created < subs[j].Created
	})
}
