package wallet

import (
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

// Service gives access to the vaults of the accounts kept by the
// settlement layer.
type Service struct {
	ledger ports.Ledger
}

func NewService(ledger ports.Ledger) (*Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("missing ledger")
	}
	return &Service{ledger}, nil
}

func (s *Service) Ledger() ports.Ledger {
	return s.ledger
}

// Fund mints amount of the faucet's asset into account.
func (s *Service) Fund(
	ctx context.Context, faucet, account notes.AccountID, amount uint64,
) error {
	if _, err := domain.NewAssetAmount(faucet, amount); err != nil {
		return err
	}
	if err := s.ledger.Mint(ctx, faucet, account, amount); err != nil {
		return err
	}
	log.Debugf("minted %d of asset %s to account %s", amount, faucet, account)
	return nil
}

// Balance returns the amount of asset held by account.
func (s *Service) Balance(
	ctx context.Context, account, asset notes.AccountID,
) (uint64, error) {
	return s.ledger.Balance(ctx, account, asset)
}

// Balances returns the non zero balances of account, sorted by asset.
func (s *Service) Balances(
	ctx context.Context, account notes.AccountID,
) ([]domain.AssetAmount, error) {
	balances, err := s.ledger.Balances(ctx, account)
	if err != nil {
		return nil, err
	}

	list := make([]domain.AssetAmount, 0, len(balances))
	for asset, amount := range balances {
		if amount == 0 {
			continue
		}
		list = append(list, domain.AssetAmount{AssetID: asset, Amount: amount})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].AssetID < list[j].AssetID
	})
	return list, nil
}

// HasBalance returns whether account holds at least the given amount.
func (s *Service) HasBalance(
	ctx context.Context, account notes.AccountID, amount domain.AssetAmount,
) error {
	balance, err := s.ledger.Balance(ctx, account, amount.AssetID)
	if err != nil {
		return err
	}
	if balance < amount.Amount {
		return fmt.Errorf(
			"%w: account %s has %d of asset %s, needs %d",
			domain.ErrInsufficientBalance, account, balance, amount.AssetID,
			amount.Amount,
		)
	}
	return nil
}

// BalancesOf returns the balance of asset for every given account. Lookups
// run concurrently.
func (s *Service) BalancesOf(
	ctx context.Context, asset notes.AccountID, accounts ...notes.AccountID,
) (map[notes.AccountID]uint64, error) {
	balances := make([]uint64, len(accounts))
	eg, ctx := errgroup.WithContext(ctx)
	for i := range accounts {
		i := i
		eg.Go(func() error {
			balance, err := s.ledger.Balance(ctx, accounts[i], asset)
			if err != nil {
				return err
			}
			balances[i] = balance
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := make(map[notes.AccountID]uint64, len(accounts))
	for i, account := range accounts {
		res[account] = balances[i]
	}
	return res, nil
}
