package main

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/compolabs/spark-miden-v1/internal/config"
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "spark"
	app.Usage = "Command line interface for partially fillable swap orders"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory, overrides SPARK_DATADIR",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		if datadir := ctx.String("datadir"); datadir != "" {
			if err := os.Setenv("SPARK_"+config.DatadirKey, datadir); err != nil {
				return err
			}
		}
		if err := config.InitConfig(); err != nil {
			return err
		}
		log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
		return nil
	}
	app.Commands = append(
		app.Commands,
		&setup,
		&fund,
		&balance,
		&create,
		&order,
		&list,
		&query,
		&show,
		&orders,
		&fills,
		&reclaim,
		&consume,
		&webhook,
		&listwebhooks,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[spark] %v\n", err)
	}
	os.Exit(1)
}
