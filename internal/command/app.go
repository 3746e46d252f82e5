// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/evectl/internal/config"
	"github.com/staranto/evectl/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// The arg[1] immediately following the binary (arg[0]) is the evectl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}
	config.Config.Namespace = ns

	meta := meta.Meta{
		Args:    args,
		Config:  config.Config,
		Context: ctx,
		Session: &meta.Session{},
	}

	app := &cli.Command{
		Name:  "evectl",
		Usage: "EVE Online universe and market queries",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "evectl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		AllianceCommandBuilder(app, meta),
		CacheCommandBuilder(app, meta),
		ConstellationCommandBuilder(app, meta),
		CorpCommandBuilder(app, meta),
		IndustryCommandBuilder(app, meta),
		OrdersCommandBuilder(app, meta),
		PricesCommandBuilder(app, meta),
		RegionsCommandBuilder(app, meta),
		SearchCommandBuilder(app, meta),
		StationCommandBuilder(app, meta),
		StructureCommandBuilder(app, meta),
		SystemCommandBuilder(app, meta),
		TypeCommandBuilder(app, meta),
		CompletionCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text.
	var sortFlags func(cmds []*cli.Command)
	sortFlags = func(cmds []*cli.Command) {
		for _, cmd := range cmds {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
			sortFlags(cmd.Commands)
		}
	}
	sortFlags(app.Commands)

	return app, nil
}
