// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/evectl/internal/esi"
	"github.com/staranto/evectl/internal/evecache"
	"github.com/staranto/evectl/internal/meta"
)

// OrdersCommandAction lists the buy or sell orders of one region.
func OrdersCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[esi.MarketOrder]{
		CommandName: "orders",
		DefaultAttrs: []string{
			"order_id:id",
			"type_id:type",
			"price::c",
			"volume_remain:remain",
			"location_id:location",
			"range",
		},
		FetchFn: func(ctx context.Context, cmd *cli.Command, ec *evecache.EveCache) ([]esi.MarketOrder, error) {
			key, err := orderKey(cmd)
			if err != nil {
				return nil, err
			}
			return ec.MarketOrders(ctx, key)
		},
	}
	return runner.Run(ctx, cmd)
}

func orderKey(cmd *cli.Command) (esi.MarketOrderKey, error) {
	ids, err := ParseIDs[int32](cmd.Args().Slice())
	if err != nil {
		return esi.MarketOrderKey{}, err
	}
	if len(ids) != 1 {
		return esi.MarketOrderKey{}, errors.New("exactly one region id is required")
	}
	ot, err := esi.ParseOrderType(cmd.String("type"))
	if err != nil {
		return esi.MarketOrderKey{}, err
	}
	return esi.MarketOrderKey{RegionID: ids[0], OrderType: ot}, nil
}

// OrdersCommandBuilder constructs the cli.Command definition for the
// "orders" command.
func OrdersCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "orders",
		Usage:     "regional market order query",
		UsageText: `evectl orders <region-id> [--type buy|sell] [options]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "order type, buy or sell",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("orders.type", altsrc.StringSourcer(meta.Config.Source)),
				),
				Value: "sell",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator, OrderTypeValidator)
				},
			},
		},
		Action: OrdersCommandAction,
		Meta:   meta,
	}).Build()
}
