package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
)

var (
	create = cli.Command{
		Name:  "create",
		Usage: "create one or more orders offering an asset for another",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "account",
				Usage: "the account creating the order",
			},
			&cli.StringFlag{
				Name:  "offered_asset",
				Usage: "the faucet of the offered asset",
			},
			&cli.Uint64Flag{
				Name:  "offered_amount",
				Usage: "the offered amount, split among orders if more than one",
			},
			&cli.StringFlag{
				Name:  "requested_asset",
				Usage: "the faucet of the requested asset",
			},
			&cli.Uint64Flag{
				Name:  "requested_amount",
				Usage: "the requested amount, split among orders if more than one",
			},
			&cli.IntFlag{
				Name:  "num_orders",
				Usage: "the number of orders to split the amounts into",
				Value: 1,
			},
		},
		Action: createAction,
	}

	order = cli.Command{
		Name:      "order",
		Usage:     "fill the best order matching the given one",
		ArgsUsage: "<account> <target faucet> <target amount> <source faucet> <source amount>",
		Action:    orderAction,
	}

	reclaim = cli.Command{
		Name:  "reclaim",
		Usage: "reclaim the offered remaining of an open order",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "account",
				Usage: "the creator of the order",
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "the order id or the note id of its live instance",
			},
		},
		Action: reclaimAction,
	}

	consume = cli.Command{
		Name:  "consume",
		Usage: "consume all the payment notes addressed to an account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "account",
				Usage: "the account the payments are addressed to",
			},
		},
		Action: consumeAction,
	}
)

func createAction(ctx *cli.Context) error {
	account, err := getAccountID(ctx, "account")
	if err != nil {
		return err
	}
	offered, err := getAssetAmount(ctx, "offered_asset", "offered_amount")
	if err != nil {
		return err
	}
	requested, err := getAssetAmount(ctx, "requested_asset", "requested_amount")
	if err != nil {
		return err
	}
	numOrders := ctx.Int("num_orders")
	if numOrders <= 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	c := context.Background()
	var orders []*domain.Order
	if numOrders == 1 {
		o, err := svc.swap.CreateOrder(c, account, offered, requested)
		if err != nil {
			return err
		}
		orders = append(orders, o)
	} else {
		if orders, err = svc.swap.CreateOrders(
			c, account, numOrders, offered, requested,
		); err != nil {
			return err
		}
	}

	infos := make([]orderInfo, 0, len(orders))
	for _, o := range orders {
		infos = append(infos, toOrderInfo(o, nil))
	}
	return printJSON(infos)
}

func orderAction(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() != 5 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	account, err := resolveAccountID(args.Get(0))
	if err != nil {
		return err
	}
	target, err := parseAssetAmount(args.Get(1), args.Get(2))
	if err != nil {
		return err
	}
	source, err := parseAssetAmount(args.Get(3), args.Get(4))
	if err != nil {
		return err
	}
	candidate := domain.ClientOrder{Source: source, Target: target}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	c := context.Background()
	book, err := svc.swap.GetBook(c, candidate)
	if err != nil {
		return err
	}
	printOrderTable(book)

	fill, err := svc.swap.FillOrder(c, account, candidate)
	if err != nil {
		return err
	}
	return printJSON(toFillInfo(fill))
}

func reclaimAction(ctx *cli.Context) error {
	account, err := getAccountID(ctx, "account")
	if err != nil {
		return err
	}
	id := ctx.String("id")
	if id == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	o, amount, err := svc.swap.ReclaimOrder(context.Background(), account, id)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("order %s reclaimed, %s returned to %s\n", o.Id, amount, account)
	return nil
}

func consumeAction(ctx *cli.Context) error {
	account, err := getAccountID(ctx, "account")
	if err != nil {
		return err
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	payments, err := svc.swap.ConsumePayments(context.Background(), account)
	if err != nil {
		return err
	}

	fmt.Println()
	for _, p := range payments {
		fmt.Printf("received %s from %s\n", p.Asset, p.Sender)
	}
	fmt.Printf("%d payment note(s) consumed\n", len(payments))
	return nil
}

func getAssetAmount(
	ctx *cli.Context, assetFlag, amountFlag string,
) (domain.AssetAmount, error) {
	asset, err := getAccountID(ctx, assetFlag)
	if err != nil {
		return domain.AssetAmount{}, err
	}
	return domain.AssetAmount{AssetID: asset, Amount: ctx.Uint64(amountFlag)}, nil
}

func parseAssetAmount(asset, amount string) (domain.AssetAmount, error) {
	id, err := resolveAccountID(asset)
	if err != nil {
		return domain.AssetAmount{}, err
	}
	value, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return domain.AssetAmount{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return domain.AssetAmount{AssetID: id, Amount: value}, nil
}
