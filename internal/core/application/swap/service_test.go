package swap_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apppubsub "github.com/compolabs/spark-miden-v1/internal/core/application/pubsub"
	"github.com/compolabs/spark-miden-v1/internal/core/application/swap"
	"github.com/compolabs/spark-miden-v1/internal/core/application/wallet"
	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	ledgerinmemory "github.com/compolabs/spark-miden-v1/internal/infrastructure/ledger/inmemory"
	"github.com/compolabs/spark-miden-v1/internal/infrastructure/pubsub"
	dbinmemory "github.com/compolabs/spark-miden-v1/internal/infrastructure/storage/db/inmemory"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

var (
	ctx = context.Background()

	faucetA = notes.AccountID(0x2a1000000000000a)
	faucetB = notes.AccountID(0x2b2000000000000b)
	creator = notes.AccountID(0x1000000000000001)
	filler  = notes.AccountID(0x1100000000000002)
	other   = notes.AccountID(0x1200000000000003)
)

type testEnv struct {
	svc    *swap.Service
	wallet *wallet.Service
	pubsub *apppubsub.Service
	repo   ports.RepoManager
}

func newTestEnv(t *testing.T, l ports.Ledger) *testEnv {
	t.Helper()

	if l == nil {
		l = ledgerinmemory.NewLedger()
	}
	walletSvc, err := wallet.NewService(l)
	require.NoError(t, err)

	ps, err := pubsub.NewService(pubsub.NewInmemoryStore())
	require.NoError(t, err)
	pubsubSvc, err := apppubsub.NewService(ps)
	require.NoError(t, err)

	repo := dbinmemory.NewRepoManager()
	svc, err := swap.NewService(walletSvc, pubsubSvc, repo, swap.Config{
		SerialSource: &serialCounter{},
	})
	require.NoError(t, err)

	return &testEnv{svc, walletSvc, pubsubSvc, repo}
}

func (e *testEnv) fund(
	t *testing.T, account, faucet notes.AccountID, amount uint64,
) {
	t.Helper()
	require.NoError(t, e.wallet.Fund(ctx, faucet, account, amount))
}

func (e *testEnv) balance(
	t *testing.T, account, faucet notes.AccountID,
) uint64 {
	t.Helper()
	balance, err := e.wallet.Balance(ctx, account, faucet)
	require.NoError(t, err)
	return balance
}

func TestNewService(t *testing.T) {
	l := ledgerinmemory.NewLedger()
	walletSvc, err := wallet.NewService(l)
	require.NoError(t, err)
	ps, err := pubsub.NewService(pubsub.NewInmemoryStore())
	require.NoError(t, err)
	pubsubSvc, err := apppubsub.NewService(ps)
	require.NoError(t, err)
	repo := dbinmemory.NewRepoManager()

	tests := []struct {
		name      string
		wallet    *wallet.Service
		pubsub    *apppubsub.Service
		repo      ports.RepoManager
		cfg       swap.Config
		expectErr bool
	}{
		{"valid", walletSvc, pubsubSvc, repo, swap.Config{}, false},
		{"missing_wallet", nil, pubsubSvc, repo, swap.Config{}, true},
		{"missing_pubsub", walletSvc, nil, repo, swap.Config{}, true},
		{"missing_repo_manager", walletSvc, pubsubSvc, nil, swap.Config{}, true},
		{"negative_retries", walletSvc, pubsubSvc, repo, swap.Config{MaxFillRetries: -1}, true},
		{"negative_rate", walletSvc, pubsubSvc, repo, swap.Config{FillRetryRate: -1}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, err := swap.NewService(tt.wallet, tt.pubsub, tt.repo, tt.cfg)
			if tt.expectErr {
				require.Error(t, err)
				require.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
		})
	}
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.fund(t, creator, faucetB, 1000)

	order, err := env.svc.CreateOrder(ctx, creator, asset(faucetB, 100), asset(faucetA, 50))
	require.NoError(t, err)
	require.True(t, order.IsOpen())
	require.Equal(t, uint64(100), order.InitialOffered)
	require.Equal(t, uint64(50), order.InitialRequested)
	require.Equal(t, uint64(900), env.balance(t, creator, faucetB))

	orders, err := env.svc.ListOrdersForPair(ctx, faucetB, faucetA)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, order.CurrentNoteId, orders[0].Id.String())

	got, fills, err := env.svc.GetOrder(ctx, order.Id)
	require.NoError(t, err)
	require.Equal(t, order.Id, got.Id)
	require.Empty(t, fills)

	got, _, err = env.svc.GetOrder(ctx, order.CurrentNoteId)
	require.NoError(t, err)
	require.Equal(t, order.Id, got.Id)
}

func TestFailingCreateOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.fund(t, creator, faucetB, 10)

	tests := []struct {
		name        string
		offered     domain.AssetAmount
		requested   domain.AssetAmount
		expectedErr error
	}{
		{"insufficient_balance", asset(faucetB, 11), asset(faucetA, 10), domain.ErrInsufficientBalance},
		{"zero_offered", asset(faucetB, 0), asset(faucetA, 10), domain.ErrZeroAmount},
		{"zero_requested", asset(faucetB, 10), asset(faucetA, 0), domain.ErrZeroAmount},
		{"same_asset", asset(faucetB, 10), asset(faucetB, 10), domain.ErrInvalidNote},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			order, err := env.svc.CreateOrder(ctx, creator, tt.offered, tt.requested)
			require.ErrorIs(t, err, tt.expectedErr)
			require.Nil(t, order)
		})
	}
	require.Equal(t, uint64(10), env.balance(t, creator, faucetB))
}

func TestCreateOrders(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.fund(t, creator, faucetA, 1000)

	orders, err := env.svc.CreateOrders(
		ctx, creator, 50, asset(faucetA, 500), asset(faucetB, 500),
	)
	require.NoError(t, err)
	require.Len(t, orders, 50)
	require.Equal(t, uint64(500), env.balance(t, creator, faucetA))

	var offered, requested uint64
	for _, o := range orders {
		offered += o.InitialOffered
		requested += o.InitialRequested
	}
	require.Equal(t, uint64(500), offered)
	require.Equal(t, uint64(500), requested)

	listed, err := env.svc.ListOrdersForPair(ctx, faucetA, faucetB)
	require.NoError(t, err)
	require.Len(t, listed, 50)
	for i := 1; i < len(listed); i++ {
		require.False(t, listed[i].Price().LessThan(listed[i-1].Price()))
	}

	records, err := env.svc.ListOrderRecords(ctx, &creator)
	require.NoError(t, err)
	require.Len(t, records, 50)

	_, err = env.svc.CreateOrders(
		ctx, creator, 50, asset(faucetA, 1001), asset(faucetB, 500),
	)
	require.Error(t, err)
	require.Equal(t, uint64(500), env.balance(t, creator, faucetA))
}

func TestConcurrentCreateOrders(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.fund(t, creator, faucetA, 300)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.CreateOrders(
				ctx, creator, 5, asset(faucetA, 75), asset(faucetB, 75),
			)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Zero(t, env.balance(t, creator, faucetA))

	records, err := env.svc.ListOrderRecords(ctx, &creator)
	require.NoError(t, err)
	require.Len(t, records, 20)
}

func TestFillOrder(t *testing.T) {
	t.Parallel()

	t.Run("perfect_price_match", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, nil)
		env.fund(t, creator, faucetB, 20)
		env.fund(t, filler, faucetA, 10)

		order, err := env.svc.CreateOrder(ctx, creator, asset(faucetB, 20), asset(faucetA, 10))
		require.NoError(t, err)

		fill, err := env.svc.FillOrder(ctx, filler, clientOrder(asset(faucetA, 10), asset(faucetB, 20)))
		require.NoError(t, err)
		require.True(t, fill.IsFullFill())
		require.Equal(t, order.Id, fill.OrderId)
		require.Equal(t, uint64(1), fill.FillNumber)
		require.Equal(t, asset(faucetA, 10), fill.Paid)
		require.Equal(t, asset(faucetB, 20), fill.Received)

		require.Equal(t, uint64(0), env.balance(t, filler, faucetA))
		require.Equal(t, uint64(20), env.balance(t, filler, faucetB))

		got, fills, err := env.svc.GetOrder(ctx, order.Id)
		require.NoError(t, err)
		require.True(t, got.IsFilled())
		require.Len(t, fills, 1)

		orders, err := env.svc.ListOrdersForPair(ctx, faucetB, faucetA)
		require.NoError(t, err)
		require.Empty(t, orders)

		payments, err := env.svc.ConsumePayments(ctx, creator)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		require.Equal(t, filler, payments[0].Sender)
		require.Equal(t, uint64(10), env.balance(t, creator, faucetA))

		payments, err = env.svc.ConsumePayments(ctx, creator)
		require.NoError(t, err)
		require.Empty(t, payments)
	})

	t.Run("partial_fills", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, nil)
		env.fund(t, creator, faucetB, 100_000_000)
		env.fund(t, filler, faucetA, 80_000_000)
		env.fund(t, other, faucetA, 20_000_000)

		order, err := env.svc.CreateOrder(
			ctx, creator, asset(faucetB, 100_000_000), asset(faucetA, 100_000_000),
		)
		require.NoError(t, err)

		fill, err := env.svc.FillOrder(ctx, filler, clientOrder(
			asset(faucetA, 80_000_000), asset(faucetB, 80_000_000),
		))
		require.NoError(t, err)
		require.False(t, fill.IsFullFill())
		require.Equal(t, uint64(80_000_000), fill.Received.Amount)

		got, _, err := env.svc.GetOrder(ctx, order.Id)
		require.NoError(t, err)
		require.True(t, got.IsOpen())
		require.Equal(t, uint64(1), got.FillCount)
		require.Equal(t, uint64(20_000_000), got.Current.Offered.Amount)
		require.Equal(t, uint64(20_000_000), got.Current.Requested.Amount)
		require.Equal(t, fill.SuccessorNoteId, got.CurrentNoteId)

		// The candidate offers more than the order requests.
		env.fund(t, other, faucetA, 30_000_000)
		fill, err = env.svc.FillOrder(ctx, other, clientOrder(
			asset(faucetA, 50_000_000), asset(faucetB, 50_000_000),
		))
		require.NoError(t, err)
		require.True(t, fill.IsFullFill())
		require.Equal(t, uint64(2), fill.FillNumber)
		require.Equal(t, asset(faucetA, 20_000_000), fill.Paid)
		require.Equal(t, uint64(30_000_000), env.balance(t, other, faucetA))

		got, fills, err := env.svc.GetOrder(ctx, order.Id)
		require.NoError(t, err)
		require.True(t, got.IsFilled())
		require.Equal(t, uint64(100_000_000), got.FilledAmount())
		require.Len(t, fills, 2)

		payments, err := env.svc.ConsumePayments(ctx, creator)
		require.NoError(t, err)
		require.Len(t, payments, 2)
		require.Equal(t, uint64(100_000_000), env.balance(t, creator, faucetA))

		all, err := env.svc.ListFills(ctx, nil, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		paged, err := env.svc.ListFills(ctx, nil, &domain.Page{Number: 0, Size: 1})
		require.NoError(t, err)
		require.Len(t, paged, 1)
		mine, err := env.svc.ListFills(ctx, &other, nil)
		require.NoError(t, err)
		require.Len(t, mine, 1)
	})

	t.Run("best_price_first", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, nil)
		env.fund(t, creator, faucetB, 1000)
		env.fund(t, other, faucetB, 1000)
		env.fund(t, filler, faucetA, 100)

		_, err := env.svc.CreateOrder(ctx, creator, asset(faucetB, 100), asset(faucetA, 100))
		require.NoError(t, err)
		best, err := env.svc.CreateOrder(ctx, other, asset(faucetB, 100), asset(faucetA, 50))
		require.NoError(t, err)
		// Too expensive for the candidate.
		_, err = env.svc.CreateOrder(ctx, creator, asset(faucetB, 100), asset(faucetA, 200))
		require.NoError(t, err)

		candidate := clientOrder(asset(faucetA, 10), asset(faucetB, 10))
		book, err := env.svc.GetBook(ctx, candidate)
		require.NoError(t, err)
		require.Len(t, book, 2)
		require.Equal(t, best.CurrentNoteId, book[0].Id.String())

		fill, err := env.svc.FillOrder(ctx, filler, candidate)
		require.NoError(t, err)
		require.Equal(t, best.Id, fill.OrderId)
		require.Equal(t, asset(faucetB, 20), fill.Received)
	})

	t.Run("own_orders_are_skipped", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, nil)
		env.fund(t, creator, faucetB, 100)
		env.fund(t, creator, faucetA, 100)

		_, err := env.svc.CreateOrder(ctx, creator, asset(faucetB, 100), asset(faucetA, 100))
		require.NoError(t, err)

		fill, err := env.svc.FillOrder(ctx, creator, clientOrder(asset(faucetA, 10), asset(faucetB, 10)))
		require.ErrorIs(t, err, domain.ErrNoMatchingOrders)
		require.Nil(t, fill)
	})
}

func TestFailingFillOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.fund(t, creator, faucetB, 100)
	env.fund(t, filler, faucetA, 5)

	_, err := env.svc.CreateOrder(ctx, creator, asset(faucetB, 100), asset(faucetA, 100))
	require.NoError(t, err)

	tests := []struct {
		name        string
		candidate   domain.ClientOrder
		expectedErr error
	}{
		{
			name:        "no_matching_orders",
			candidate:   clientOrder(asset(faucetA, 10), asset(faucetB, 20)),
			expectedErr: domain.ErrNoMatchingOrders,
		},
		{
			name:        "insufficient_balance",
			candidate:   clientOrder(asset(faucetA, 10), asset(faucetB, 10)),
			expectedErr: domain.ErrInsufficientBalance,
		},
		{
			name:        "invalid_candidate",
			candidate:   clientOrder(asset(faucetA, 10), asset(faucetA, 10)),
			expectedErr: domain.ErrAssetsNotMatching,
		},
		{
			name:        "zero_amount",
			candidate:   clientOrder(asset(faucetA, 0), asset(faucetB, 10)),
			expectedErr: domain.ErrZeroAmount,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fill, err := env.svc.FillOrder(ctx, filler, tt.candidate)
			require.ErrorIs(t, err, tt.expectedErr)
			require.Nil(t, fill)
		})
	}
	require.Equal(t, uint64(5), env.balance(t, filler, faucetA))
}

func TestFillOrderRetriesStaleOrder(t *testing.T) {
	t.Parallel()

	l := &racingLedger{Ledger: ledgerinmemory.NewLedger(), racer: other}
	env := newTestEnv(t, l)
	env.fund(t, creator, faucetB, 100)
	env.fund(t, other, faucetA, 50)
	env.fund(t, filler, faucetA, 30)

	order, err := env.svc.CreateOrder(ctx, creator, asset(faucetB, 100), asset(faucetA, 100))
	require.NoError(t, err)

	fill, err := env.svc.FillOrder(ctx, filler, clientOrder(asset(faucetA, 30), asset(faucetB, 30)))
	require.NoError(t, err)
	require.Equal(t, uint64(2), fill.FillNumber)
	require.Equal(t, asset(faucetB, 30), fill.Received)
	require.Equal(t, uint64(50), env.balance(t, other, faucetB))

	got, _, err := env.svc.GetOrder(ctx, order.Id)
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.FillCount)
	require.Equal(t, uint64(20), got.Current.Offered.Amount)
	require.Equal(t, uint64(20), got.Current.Requested.Amount)
}

func TestReclaimOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.fund(t, creator, faucetB, 1000)
	env.fund(t, filler, faucetA, 393)

	order, err := env.svc.CreateOrder(ctx, creator, asset(faucetB, 1000), asset(faucetA, 1000))
	require.NoError(t, err)
	_, err = env.svc.FillOrder(ctx, filler, clientOrder(asset(faucetA, 393), asset(faucetB, 393)))
	require.NoError(t, err)

	_, _, err = env.svc.ReclaimOrder(ctx, filler, order.Id)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	reclaimed, amount, err := env.svc.ReclaimOrder(ctx, creator, order.Id)
	require.NoError(t, err)
	require.True(t, reclaimed.IsReclaimed())
	require.Equal(t, asset(faucetB, 607), amount)
	require.Equal(t, uint64(607), env.balance(t, creator, faucetB))

	orders, err := env.svc.ListOrdersForPair(ctx, faucetB, faucetA)
	require.NoError(t, err)
	require.Empty(t, orders)

	_, _, err = env.svc.ReclaimOrder(ctx, creator, order.Id)
	require.ErrorIs(t, err, domain.ErrOrderClosed)

	_, _, err = env.svc.ReclaimOrder(ctx, creator, "0x00")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestQueryNotes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.fund(t, creator, faucetA, 100)
	env.fund(t, creator, faucetB, 100)

	_, err := env.svc.CreateOrder(ctx, creator, asset(faucetA, 10), asset(faucetB, 10))
	require.NoError(t, err)
	_, err = env.svc.CreateOrder(ctx, creator, asset(faucetB, 10), asset(faucetA, 10))
	require.NoError(t, err)

	list, err := env.svc.QueryNotes(ctx, notes.DeriveTag(faucetA, faucetB))
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = env.svc.QueryNotes(
		ctx, notes.DeriveTag(faucetA, faucetB), notes.DeriveTag(faucetB, faucetA),
	)
	require.NoError(t, err)
	require.Len(t, list, 2)

	orders, err := env.svc.ListOrders(ctx, notes.DeriveTag(faucetB, faucetA))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, faucetB, orders[0].Source.AssetID)
}

func TestOrderEvents(t *testing.T) {
	t.Parallel()

	events := make(chan map[string]interface{}, 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		payload := make(map[string]interface{})
		if err := json.Unmarshal(body, &payload); err == nil {
			events <- payload
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	env := newTestEnv(t, nil)
	env.fund(t, creator, faucetB, 20)
	env.fund(t, filler, faucetA, 10)

	_, err := env.pubsub.AddWebhook(ctx, apppubsub.Webhook{
		Event:    apppubsub.EventOrderFilled,
		Endpoint: server.URL,
	})
	require.NoError(t, err)

	order, err := env.svc.CreateOrder(ctx, creator, asset(faucetB, 20), asset(faucetA, 10))
	require.NoError(t, err)
	_, err = env.svc.FillOrder(ctx, filler, clientOrder(asset(faucetA, 10), asset(faucetB, 20)))
	require.NoError(t, err)

	var event map[string]interface{}
	select {
	case event = <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for order filled event")
	}
	require.Equal(t, apppubsub.EventOrderFilled, event["event"])
	orderPayload, ok := event["order"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, order.Id, orderPayload["id"])
	require.Equal(t, "FILLED", orderPayload["status"])
}

func asset(id notes.AccountID, amount uint64) domain.AssetAmount {
	return domain.AssetAmount{AssetID: id, Amount: amount}
}

func clientOrder(source, target domain.AssetAmount) domain.ClientOrder {
	return domain.ClientOrder{Source: source, Target: target}
}

type serialCounter struct {
	locker sync.Mutex
	next   uint64
}

func (s *serialCounter) NewSerial() (notes.Word, error) {
	s.locker.Lock()
	defer s.locker.Unlock()

	s.next++
	return notes.NewWord(s.next, 0x5eed, 0, 0), nil
}

// racingLedger lets racer fill half of the order targeted by the first
// consumption, before letting it through.
type racingLedger struct {
	ports.Ledger
	racer notes.AccountID
	once  sync.Once
}

func (l *racingLedger) Consume(
	ctx context.Context, req ports.ConsumeRequest,
) (*ports.ConsumeResult, error) {
	var raceErr error
	l.once.Do(func() {
		n, err := l.Ledger.GetNote(ctx, req.NoteId)
		if err != nil || n == nil {
			raceErr = err
			return
		}
		o, err := domain.SwapOrderFromNote(*n)
		if err != nil {
			raceErr = err
			return
		}
		_, raceErr = l.Ledger.Consume(ctx, ports.ConsumeRequest{
			Consumer:      l.racer,
			NoteId:        req.NoteId,
			RequestedFill: o.Requested.Amount / 2,
		})
	})
	if raceErr != nil {
		return nil, raceErr
	}
	return l.Ledger.Consume(ctx, req)
}
