package db_test

import (
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	dbbadger "github.com/compolabs/spark-miden-v1/internal/infrastructure/storage/db/badger"
	"github.com/compolabs/spark-miden-v1/internal/infrastructure/storage/db/inmemory"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
	"github.com/stretchr/testify/require"
)

type repoManager struct {
	Name    string
	Manager ports.RepoManager
}

func createRepoManagers(t *testing.T) []repoManager {
	badgerRepoManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(badgerRepoManager.Close)

	return []repoManager{
		{
			Name:    "badger",
			Manager: badgerRepoManager,
		},
		{
			Name:    "inmemory",
			Manager: inmemory.NewRepoManager(),
		},
	}
}

func makeRandomOrder(creator notes.AccountID) *domain.Order {
	o, err := domain.NewSwapOrder(
		creator,
		domain.AssetAmount{AssetID: randomAccountID(), Amount: randomAmount()},
		domain.AssetAmount{AssetID: randomAccountID(), Amount: randomAmount()},
		randomWord(),
	)
	if err != nil {
		panic(err)
	}
	order, err := domain.NewOrder(*o)
	if err != nil {
		panic(err)
	}
	return order
}

func randomWord() notes.Word {
	w, err := notes.WordFromBytes(randomBytes(32))
	if err != nil {
		panic(err)
	}
	return w
}

func randomAccountID() notes.AccountID {
	return notes.AccountID(binary.LittleEndian.Uint64(randomBytes(8)) >> 4)
}

func randomAmount() uint64 {
	return binary.LittleEndian.Uint64(randomBytes(8))%1_000_000_000 + 1
}

func randomBytes(len int) []byte {
	b := make([]byte, len)
	//nolint
	rand.Read(b)
	return b
}
