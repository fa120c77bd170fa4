package main

import (
	"context"
	"log"
	"os"

	"github.com/diggyk/gatehouse/cmd/gatehouse/subcommands/serve"
	"github.com/diggyk/gatehouse/cmd/gatehouse/version"
	"github.com/diggyk/gatehouse/internal/logging"
	"github.com/urfave/cli/v3"
)

var logger = logging.GetLogger("gatehouse")

func main() {
	cmd := &cli.Command{
		Name:    "gatehouse",
		Usage:   "A policy decision point unifying RBAC, ABAC, and feature-flag authorization",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "trace",
				Aliases: []string{"t"},
				Usage:   "Enable trace logging output to stderr",
				Value:   logger.IsTraceEnabled(),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Starts the decision point server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "storage",
						Aliases: []string{"s"},
						Usage:   "Storage URL, of the form 'file:{path}' or 'etcd:{endpoint}'. Overrides GATESTORAGE/storage.url.",
					},
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "The address to listen on. Overrides listen.addr.",
					},
				},
				Action: serve.Execute,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
