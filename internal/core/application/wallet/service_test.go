package wallet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compolabs/spark-miden-v1/internal/core/application/wallet"
	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/infrastructure/ledger/inmemory"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

var (
	ctx     = context.Background()
	faucetA = notes.AccountID(0x2a1000000000000a)
	faucetB = notes.AccountID(0x2b2000000000000b)
	alice   = notes.AccountID(0x1000000000000001)
	bob     = notes.AccountID(0x1100000000000002)
)

func TestNewService(t *testing.T) {
	svc, err := wallet.NewService(nil)
	require.Error(t, err)
	require.Nil(t, svc)
}

func TestFund(t *testing.T) {
	t.Parallel()

	svc, err := wallet.NewService(inmemory.NewLedger())
	require.NoError(t, err)

	require.NoError(t, svc.Fund(ctx, faucetB, alice, 20))
	require.NoError(t, svc.Fund(ctx, faucetA, alice, 1000))
	require.NoError(t, svc.Fund(ctx, faucetA, alice, 500))
	require.ErrorIs(t, svc.Fund(ctx, faucetA, alice, 0), domain.ErrZeroAmount)

	balance, err := svc.Balance(ctx, alice, faucetA)
	require.NoError(t, err)
	require.Equal(t, uint64(1500), balance)

	balances, err := svc.Balances(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, []domain.AssetAmount{
		{AssetID: faucetA, Amount: 1500},
		{AssetID: faucetB, Amount: 20},
	}, balances)

	balances, err = svc.Balances(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, balances)
}

func TestHasBalance(t *testing.T) {
	t.Parallel()

	svc, err := wallet.NewService(inmemory.NewLedger())
	require.NoError(t, err)
	require.NoError(t, svc.Fund(ctx, faucetA, alice, 100))

	tests := []struct {
		name        string
		account     notes.AccountID
		amount      domain.AssetAmount
		expectedErr error
	}{
		{"enough", alice, domain.AssetAmount{AssetID: faucetA, Amount: 100}, nil},
		{"not_enough", alice, domain.AssetAmount{AssetID: faucetA, Amount: 101}, domain.ErrInsufficientBalance},
		{"other_asset", alice, domain.AssetAmount{AssetID: faucetB, Amount: 1}, domain.ErrInsufficientBalance},
		{"empty_account", bob, domain.AssetAmount{AssetID: faucetA, Amount: 1}, domain.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := svc.HasBalance(ctx, tt.account, tt.amount)
			if tt.expectedErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestBalancesOf(t *testing.T) {
	t.Parallel()

	svc, err := wallet.NewService(inmemory.NewLedger())
	require.NoError(t, err)
	require.NoError(t, svc.Fund(ctx, faucetA, alice, 100))
	require.NoError(t, svc.Fund(ctx, faucetA, bob, 42))

	balances, err := svc.BalancesOf(ctx, faucetA, alice, bob)
	require.NoError(t, err)
	require.Equal(t, map[notes.AccountID]uint64{alice: 100, bob: 42}, balances)
}
