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

// PricesCommandAction lists the universe wide average and adjusted prices.
// Positional type ids narrow the list.
func PricesCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[esi.PriceItem]{
		CommandName:  "prices",
		DefaultAttrs: []string{"type_id:type", "average_price:average:c", "adjusted_price:adjusted:c"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, ec *evecache.EveCache) ([]esi.PriceItem, error) {
			prices, err := ec.MarketPrices(ctx)
			if err != nil || !cmd.Args().Present() {
				return prices, err
			}

			ids, err := ParseIDs[int32](cmd.Args().Slice())
			if err != nil {
				return nil, err
			}
			wanted := make(map[int32]bool, len(ids))
			for _, id := range ids {
				wanted[id] = true
			}

			var selected []esi.PriceItem
			for _, p := range prices {
				if wanted[p.TypeID] {
					selected = append(selected, p)
				}
			}
			return selected, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// PricesCommandBuilder constructs the cli.Command definition for the
// "prices" command.
func PricesCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "prices",
		Usage:     "market price query",
		UsageText: `evectl prices [type-id...] [options]`,
		Action:    PricesCommandAction,
		Meta:      meta,
	}).Build()
}
