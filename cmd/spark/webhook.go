package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/compolabs/spark-miden-v1/internal/core/application/pubsub"
	"github.com/compolabs/spark-miden-v1/internal/core/ports"
)

var (
	eventFlags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "order_created_event",
			Usage: "triggers the webhook endpoint whenever an order is created",
			Value: false,
		},
		&cli.BoolFlag{
			Name:  "order_filled_event",
			Usage: "triggers the webhook endpoint whenever an order is filled",
			Value: false,
		},
		&cli.BoolFlag{
			Name:  "order_reclaimed_event",
			Usage: "triggers the webhook endpoint whenever an order is reclaimed",
			Value: false,
		},
		&cli.BoolFlag{
			Name:  "any_event",
			Usage: "triggers the webhook endpoint whenever any event occurs",
			Value: false,
		},
	}

	webhook = cli.Command{
		Name:  "webhook",
		Usage: "add or remove webhooks",
		Subcommands: []*cli.Command{
			webhookAddCmd, webhookRemoveCmd,
		},
	}
	listwebhooks = cli.Command{
		Name:   "webhooks",
		Usage:  "list all webhooks, optionally filtered by target event",
		Flags:  eventFlags,
		Action: listWebhooksAction,
	}

	webhookAddCmd = &cli.Command{
		Name:  "add",
		Usage: "add a (secured) webhook endpoint called whenever a target event occurs",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "the webhook endpoint to be called whenever the target event occurs",
				Value: "",
			},
			&cli.StringFlag{
				Name: "secret",
				Usage: "the eventual secret to use to sign a token for " +
					"authenticating requests to the webhook endpoint",
				Value: "",
			},
		}, eventFlags...),
		Action: addWebhookAction,
	}

	webhookRemoveCmd = &cli.Command{
		Name:  "remove",
		Usage: "remove a webhook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "the id of the webhook to remove",
				Value: "",
			},
		},
		Action: removeWebhookAction,
	}
)

func addWebhookAction(ctx *cli.Context) error {
	endpoint := ctx.String("endpoint")
	secret := ctx.String("secret")
	event, err := parseEvent(ctx)
	if err != nil {
		return err
	}
	if event.IsUnspecified() {
		return fmt.Errorf("missing event")
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := svc.pubsub.AddWebhook(context.Background(), pubsub.Webhook{
		Event:    event,
		Endpoint: endpoint,
		Secret:   secret,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("webhook id:", id)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	id := ctx.String("id")
	if id == "" {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.pubsub.RemoveWebhook(context.Background(), id); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("webhook removed")
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	event, err := parseEvent(ctx)
	if err != nil {
		return err
	}

	svc, cleanup, err := getServices()
	if err != nil {
		return err
	}
	defer cleanup()

	hooks, err := svc.pubsub.ListWebhooks(context.Background(), event)
	if err != nil {
		return err
	}

	res := make([]map[string]interface{}, 0, len(hooks))
	for _, h := range hooks {
		res = append(res, map[string]interface{}{
			"id":         h.GetId(),
			"event":      fmt.Sprint(h.GetEvent()),
			"endpoint":   h.GetEndpoint(),
			"is_secured": h.IsSecured(),
		})
	}
	return printJSON(res)
}

func parseEvent(ctx *cli.Context) (pubsub.WebhookEvent, error) {
	flags := map[string]pubsub.WebhookEvent{
		"order_created_event":   pubsub.EventOrderCreated,
		"order_filled_event":    pubsub.EventOrderFilled,
		"order_reclaimed_event": pubsub.EventOrderReclaimed,
		"any_event":             ports.AnyTopic,
	}

	var event pubsub.WebhookEvent
	for flag, e := range flags {
		if !ctx.Bool(flag) {
			continue
		}
		if event != "" {
			return "", fmt.Errorf("only one event flag can be set")
		}
		event = e
	}
	return event, nil
}
