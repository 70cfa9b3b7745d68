package domain_test

import (
	"testing"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMatchOrders(t *testing.T) {
	t.Parallel()

	// Incoming order offering 10 A for 20 B.
	candidate := clientOrder(asset(faucetA, 10), asset(faucetB, 20))

	tests := []struct {
		name          string
		existing      domain.ClientOrder
		expectedError error
	}{
		{
			name:     "perfect_match",
			existing: clientOrder(asset(faucetB, 20), asset(faucetA, 10)),
		},
		{
			name:          "assets_not_matching",
			existing:      clientOrder(asset(faucetA, 10), asset(faucetA, 10)),
			expectedError: domain.ErrAssetsNotMatching,
		},
		{
			name:          "other_pair",
			existing:      clientOrder(asset(faucetC, 20), asset(faucetA, 10)),
			expectedError: domain.ErrAssetsNotMatching,
		},
		{
			name:          "too_few_source_assets",
			existing:      clientOrder(asset(faucetB, 19), asset(faucetA, 10)),
			expectedError: domain.ErrPriceViolation,
		},
		{
			name:          "too_many_target_assets",
			existing:      clientOrder(asset(faucetB, 20), asset(faucetA, 11)),
			expectedError: domain.ErrPriceViolation,
		},
		{
			name:     "better_price",
			existing: clientOrder(asset(faucetB, 200), asset(faucetA, 10)),
		},
		{
			name:          "empty_existing",
			existing:      clientOrder(asset(faucetB, 0), asset(faucetA, 10)),
			expectedError: domain.ErrZeroAmount,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := domain.MatchOrders(tt.existing, candidate)
			if tt.expectedError == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestPrice(t *testing.T) {
	t.Parallel()

	o := clientOrder(asset(faucetB, 8), asset(faucetA, 3))
	require.True(t, decimal.RequireFromString("0.375").Equal(o.Price()))
}

func TestBuildBook(t *testing.T) {
	t.Parallel()

	candidate := clientOrder(asset(faucetA, 10), asset(faucetB, 20))

	worse := clientOrder(asset(faucetB, 19), asset(faucetA, 10))
	perfect := clientOrder(asset(faucetB, 20), asset(faucetA, 10))
	best := clientOrder(asset(faucetB, 200), asset(faucetA, 10))
	otherPair := clientOrder(asset(faucetC, 50), asset(faucetA, 1))
	sameAsPerfect := clientOrder(asset(faucetB, 40), asset(faucetA, 20))
	sameAsPerfect.Id[3] = 2

	discovered := []domain.ClientOrder{
		worse, perfect, otherPair, sameAsPerfect, best,
	}

	book, err := domain.BuildBook(candidate, discovered)
	require.NoError(t, err)
	require.Equal(t, []domain.ClientOrder{best, perfect, sameAsPerfect}, book)

	selected, err := domain.SelectBest(book)
	require.NoError(t, err)
	require.Equal(t, best, selected)
	require.Equal(t, uint64(10), domain.FillAmountFor(selected, candidate))
}

func TestFailingBuildBook(t *testing.T) {
	t.Parallel()

	t.Run("invalid_candidate", func(t *testing.T) {
		t.Parallel()

		candidate := clientOrder(asset(faucetA, 10), asset(faucetA, 20))
		_, err := domain.BuildBook(candidate, nil)
		require.ErrorIs(t, err, domain.ErrAssetsNotMatching)
	})

	t.Run("no_matching_orders", func(t *testing.T) {
		t.Parallel()

		candidate := clientOrder(asset(faucetA, 10), asset(faucetB, 20))
		book, err := domain.BuildBook(candidate, []domain.ClientOrder{
			clientOrder(asset(faucetB, 1), asset(faucetA, 10)),
		})
		require.NoError(t, err)
		require.Empty(t, book)

		_, err = domain.SelectBest(book)
		require.ErrorIs(t, err, domain.ErrNoMatchingOrders)
	})
}

func TestFillAmountFor(t *testing.T) {
	t.Parallel()

	existing := clientOrder(asset(faucetB, 20), asset(faucetA, 10))

	tests := []struct {
		name      string
		candidate domain.ClientOrder
		expected  uint64
	}{
		{
			name:      "candidate_fills_partially",
			candidate: clientOrder(asset(faucetA, 4), asset(faucetB, 8)),
			expected:  4,
		},
		{
			name:      "candidate_exhausts_existing",
			candidate: clientOrder(asset(faucetA, 25), asset(faucetB, 50)),
			expected:  10,
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, domain.FillAmountFor(existing, tt.candidate))
		})
	}
}

func TestSortOrders(t *testing.T) {
	t.Parallel()

	cheap := clientOrder(asset(faucetB, 100), asset(faucetA, 1))
	mid := clientOrder(asset(faucetB, 10), asset(faucetA, 1))
	midToo := clientOrder(asset(faucetB, 30), asset(faucetA, 3))
	midToo.Id[3] = 9
	dear := clientOrder(asset(faucetB, 1), asset(faucetA, 1))

	orders := []domain.ClientOrder{dear, mid, cheap, midToo}
	domain.SortOrders(orders)
	require.Equal(t, []domain.ClientOrder{cheap, mid, midToo, dear}, orders)
}

func TestClientOrderFromSwapOrder(t *testing.T) {
	t.Parallel()

	o := newOrder(100, 300)
	co := domain.ClientOrderFromSwapOrder(o)
	require.Equal(t, o.Id(), co.Id)
	require.Equal(t, o.Offered, co.Source)
	require.Equal(t, o.Requested, co.Target)
	require.True(t, decimal.NewFromInt(3).Equal(co.Price()))
}
