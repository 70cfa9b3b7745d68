package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

var (
	list = cli.Command{
		Name:      "list",
		Usage:     "list the live orders with the given swap tag, or for the given pair",
		ArgsUsage: "[swap tag]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "offered_asset",
				Usage: "the faucet of the asset offered by the listed orders",
			},
			&cli.StringFlag{
				Name:  "requested_asset",
				Usage: "the faucet of the asset requested by the listed orders",
			},
		},
		Action: listAction,
	}

	query = cli.Command{
		Name:      "query",
		Usage:     "list the live notes with any of the given tags",
		ArgsUsage: "<tag> [<tag>...]",
		Action:    queryAction,
	}

	show = cli.Command{
		Name:      "show",
		Usage:     "show an order record with its fills",
		ArgsUsage: "<order id | note id>",
		Action:    showAction,
	}

	orders = cli.Command{
		Name:  "orders",
		Usage: "list the recorded orders, optionally only the open ones of a creator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "creator",
				Usage: "list only the open orders of this account",
			},
		},
		Action: ordersAction,
	}

	fills = cli.Command{
		Name:  "fills",
		Usage: "list the recorded fills, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "filler",
				Usage: "list only the fills of this account",
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "the page number, starting from 1",
			},
			&cli.IntFlag{
				Name:  "page_size",
				Usage: "the number of fills per page",
				Value: 10,
			},
		},
		Action: fillsAction,
	}
)

func listAction(ctx *cli.Context) error {
	var (
		tag              notes.NoteTag
		offered, request notes.AccountID
		byPair           bool
	)
	switch {
	case ctx.Args().Len() == 1:
		tags, err := parseTags(ctx.Args().Slice())
		if err != nil {
			return err
		}
		tag = tags[0]
	case ctx.String("offered_asset") != "" && ctx.String("requested_asset") != "":
		var err error
		if offered, err = getAccountID(ctx, "offered_asset"); err != nil {
			return err
		}
		if request, err = getAccountID(ctx, "requested_asset"); err != nil {
			return err
		}
		byPair = true
	default:
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	var orders []domain.ClientOrder
	if byPair {
		orders, err = svc.swap.ListOrdersForPair(context.Background(), offered, request)
	} else {
		orders, err = svc.swap.ListOrders(context.Background(), tag)
	}
	if err != nil {
		return err
	}

	printOrderTable(orders)
	return nil
}

func queryAction(ctx *cli.Context) error {
	if ctx.Args().Len() == 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	tags, err := parseTags(ctx.Args().Slice())
	if err != nil {
		return err
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := svc.swap.QueryNotes(context.Background(), tags...)
	if err != nil {
		return err
	}

	infos := make([]noteInfo, 0, len(list))
	for _, n := range list {
		infos = append(infos, toNoteInfo(n))
	}
	return printJSON(infos)
}

func showAction(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	o, fills, err := svc.swap.GetOrder(context.Background(), ctx.Args().First())
	if err != nil {
		return err
	}
	return printJSON(toOrderInfo(o, fills))
}

func fillsAction(ctx *cli.Context) error {
	var filler *notes.AccountID
	if ctx.String("filler") != "" {
		account, err := getAccountID(ctx, "filler")
		if err != nil {
			return err
		}
		filler = &account
	}
	var page *domain.Page
	if n := ctx.Int("page"); n > 0 {
		p := domain.NewPage(n, ctx.Int("page_size"))
		page = &p
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := svc.swap.ListFills(context.Background(), filler, page)
	if err != nil {
		return err
	}

	infos := make([]fillInfo, 0, len(list))
	for _, f := range list {
		infos = append(infos, toFillInfo(f))
	}
	if len(infos) == 0 {
		fmt.Println("no fills")
		return nil
	}
	return printJSON(infos)
}

func ordersAction(ctx *cli.Context) error {
	var creator *notes.AccountID
	if ctx.String("creator") != "" {
		account, err := getAccountID(ctx, "creator")
		if err != nil {
			return err
		}
		creator = &account
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := svc.swap.ListOrderRecords(context.Background(), creator)
	if err != nil {
		return err
	}

	infos := make([]orderInfo, 0, len(list))
	for _, o := range list {
		infos = append(infos, toOrderInfo(o, nil))
	}
	return printJSON(infos)
}
