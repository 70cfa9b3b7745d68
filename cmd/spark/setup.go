package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

const (
	faucetMetadata  = 0x2
	accountMetadata = 0x1
)

var setup = cli.Command{
	Name:  "setup",
	Usage: "create two faucets and a funded user with orders on both sides of the book",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "amount",
			Usage: "the amount of each asset minted to the user",
			Value: 1000,
		},
		&cli.IntFlag{
			Name:  "num_orders",
			Usage: "the number of orders created on each side of the book",
			Value: 50,
		},
		&cli.Uint64Flag{
			Name:  "total",
			Usage: "the total amount offered and requested on each side of the book",
			Value: 500,
		},
	},
	Action: setupAction,
}

func setupAction(ctx *cli.Context) error {
	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	amount := ctx.Uint64("amount")
	numOrders := ctx.Int("num_orders")
	total := ctx.Uint64("total")
	if total > amount {
		return fmt.Errorf("total must not exceed the minted amount")
	}

	faucetA, err := newAccountID(faucetMetadata)
	if err != nil {
		return err
	}
	faucetB, err := newAccountID(faucetMetadata)
	if err != nil {
		return err
	}
	user, err := newAccountID(accountMetadata)
	if err != nil {
		return err
	}

	c := context.Background()
	for _, faucet := range []notes.AccountID{faucetA, faucetB} {
		if err := svc.wallet.Fund(c, faucet, user, amount); err != nil {
			return err
		}
	}

	pairs := [][2]notes.AccountID{{faucetA, faucetB}, {faucetB, faucetA}}
	for _, pair := range pairs {
		if _, err := svc.swap.CreateOrders(
			c, user, numOrders,
			domain.AssetAmount{AssetID: pair[0], Amount: total},
			domain.AssetAmount{AssetID: pair[1], Amount: total},
		); err != nil {
			return err
		}
	}

	if err := setState(map[string]string{
		stateFaucetA: faucetA.String(),
		stateFaucetB: faucetB.String(),
		stateUser:    user.String(),
	}); err != nil {
		return err
	}

	balances, err := svc.wallet.Balances(c, user)
	if err != nil {
		return err
	}

	fmt.Println("faucet A:", faucetA)
	fmt.Println("faucet B:", faucetB)
	fmt.Println("user:", user)
	fmt.Println("swap tag A/B:", notes.DeriveTag(faucetA, faucetB))
	fmt.Println("swap tag B/A:", notes.DeriveTag(faucetB, faucetA))
	for _, b := range balances {
		fmt.Println("balance:", b)
	}
	fmt.Println()
	fmt.Println("order book successfully setup")
	return nil
}

// newAccountID returns a random account id with the given metadata bits.
func newAccountID(metadata uint8) (notes.AccountID, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return 0, err
	}
	id := binary.LittleEndian.Uint64(buf) >> notes.AccountMetadataBits
	id |= uint64(metadata) << (64 - notes.AccountMetadataBits)
	return notes.AccountID(id), nil
}
