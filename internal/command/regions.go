// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/evectl/internal/esi"
	"github.com/staranto/evectl/internal/evecache"
	"github.com/staranto/evectl/internal/meta"
)

// RegionsCommandAction lists the given regions, or every region when no id
// is given.
func RegionsCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[esi.Region]{
		CommandName:  "regions",
		DefaultAttrs: []string{"region_id:id", "name"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, ec *evecache.EveCache) ([]esi.Region, error) {
			var ids []int32
			var err error
			if cmd.Args().Present() {
				ids, err = ParseIDs[int32](cmd.Args().Slice())
			} else {
				ids, err = ec.RegionIDs(ctx)
			}
			if err != nil {
				return nil, err
			}
			return LookupAll(ctx, ids, ec.Region)
		},
	}
	return runner.Run(ctx, cmd)
}

// RegionsCommandBuilder constructs the cli.Command definition for the
// "regions" command.
func RegionsCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "regions",
		Usage:     "region query",
		UsageText: `evectl regions [id...] [options]`,
		Action:    RegionsCommandAction,
		Meta:      meta,
	}).Build()
}
