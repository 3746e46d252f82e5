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

// IndustryCommandAction lists the industry cost indices of every system,
// one column per activity.
func IndustryCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[map[string]any]{
		CommandName: "industry",
		DefaultAttrs: []string{
			"solar_system_id:system",
			"manufacturing:mfg",
			"researching_time_efficiency:te",
			"researching_material_efficiency:me",
			"copying",
			"invention",
			"reaction",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, ec *evecache.EveCache) ([]map[string]any, error) {
			systems, err := ec.IndustrialSystems(ctx)
			if err != nil {
				return nil, err
			}
			return industryRows(systems), nil
		},
	}
	return runner.Run(ctx, cmd)
}

// industryRows flattens the cost indices so each activity is a column.
func industryRows(systems []esi.IndustrialSystem) []map[string]any {
	rows := make([]map[string]any, 0, len(systems))
	for _, s := range systems {
		row := map[string]any{"solar_system_id": s.SolarSystemID}
		for _, ci := range s.CostIndices {
			row[ci.Activity] = ci.CostIndex
		}
		rows = append(rows, row)
	}
	return rows
}

// IndustryCommandBuilder constructs the cli.Command definition for the
// "industry" command.
func IndustryCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "industry",
		Usage:     "industry cost index query",
		UsageText: `evectl industry [options]`,
		Action:    IndustryCommandAction,
		Meta:      meta,
	}).Build()
}
