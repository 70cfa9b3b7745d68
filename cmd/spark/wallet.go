package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

var (
	fund = cli.Command{
		Name:  "fund",
		Usage: "mint some amount of a faucet's asset to an account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "account",
				Usage: "the account to fund, or one of the aliases set by setup",
			},
			&cli.StringFlag{
				Name:  "faucet",
				Usage: "the faucet issuing the asset",
			},
			&cli.Uint64Flag{
				Name:  "amount",
				Usage: "the amount to mint",
			},
		},
		Action: fundAction,
	}

	balance = cli.Command{
		Name:  "balance",
		Usage: "get the balance of an account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "account",
				Usage: "the account to get the balance of",
			},
			&cli.StringFlag{
				Name:  "asset",
				Usage: "the asset to get the balance for, all if not specified",
			},
		},
		Action: balanceAction,
	}
)

func fundAction(ctx *cli.Context) error {
	account, err := getAccountID(ctx, "account")
	if err != nil {
		return err
	}
	faucet, err := getAccountID(ctx, "faucet")
	if err != nil {
		return err
	}
	amount := ctx.Uint64("amount")
	if amount == 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.wallet.Fund(context.Background(), faucet, account, amount); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("minted %d of asset %s to %s\n", amount, faucet, account)
	return nil
}

func balanceAction(ctx *cli.Context) error {
	account, err := getAccountID(ctx, "account")
	if err != nil {
		return err
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	c := context.Background()
	if ctx.String("asset") != "" {
		asset, err := getAccountID(ctx, "asset")
		if err != nil {
			return err
		}
		amount, err := svc.wallet.Balance(c, account, asset)
		if err != nil {
			return err
		}
		return printJSON(map[string]uint64{asset.String(): amount})
	}

	balances, err := svc.wallet.Balances(c, account)
	if err != nil {
		return err
	}
	res := make(map[string]uint64, len(balances))
	for _, b := range balances {
		res[b.AssetID.String()] = b.Amount
	}
	return printJSON(res)
}
