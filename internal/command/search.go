// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/evectl/internal/esi"
	"github.com/staranto/evectl/internal/evecache"
	"github.com/staranto/evectl/internal/meta"
)

// searchRow is one hit of a search, tagged with its category.
type searchRow struct {
	Category string `json:"category"`
	ID       int64  `json:"id"`
}

// SearchCommandAction runs a character search and lists the hits.
func SearchCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[searchRow]{
		CommandName:  "search",
		DefaultAttrs: []string{"category", "id"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, ec *evecache.EveCache) ([]searchRow, error) {
			key, err := searchKey(cmd)
			if err != nil {
				return nil, err
			}
			res, err := ec.Search(ctx, key)
			if err != nil {
				return nil, err
			}
			return searchRows(res)
		},
	}
	return runner.Run(ctx, cmd)
}

func searchKey(cmd *cli.Command) (esi.SearchKey, error) {
	text := strings.Join(cmd.Args().Slice(), " ")
	if text == "" {
		return esi.SearchKey{}, errors.New("search text is required")
	}

	id, err := strconv.ParseInt(cmd.String("character"), 10, 32)
	if err != nil {
		return esi.SearchKey{}, fmt.Errorf("a character id is required: %w", err)
	}

	strict := esi.StrictUnset
	if cmd.IsSet("strict") {
		if strict, err = esi.ParseStrict(cmd.String("strict")); err != nil {
			return esi.SearchKey{}, err
		}
	}

	key := esi.SearchKey{
		CharacterID: int32(id),
		Categories:  cmd.String("categories"),
		Search:      text,
		Strict:      strict,
	}
	if err := key.Validate(); err != nil {
		return esi.SearchKey{}, err
	}
	return key, nil
}

// searchRows flattens a search result into one row per hit, ordered by
// category.
func searchRows(res esi.SearchResult) ([]searchRow, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var byCategory map[string][]int64
	if err := json.Unmarshal(b, &byCategory); err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	slices.Sort(categories)

	rows := make([]searchRow, 0)
	for _, c := range categories {
		for _, id := range byCategory[c] {
			rows = append(rows, searchRow{Category: c, ID: id})
		}
	}
	return rows, nil
}

// SearchCommandBuilder constructs the cli.Command definition for the
// "search" command. Searching needs a token.
func SearchCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	src := altsrc.StringSourcer(meta.Config.Source)

	return (&QueryCommandBuilder{
		Name:      "search",
		Usage:     "character search",
		UsageText: `evectl search <text> --character <id> [--categories list] [--strict true|false] [options]`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "categories",
				Usage: "comma-separated search categories",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("search.categories", src),
				),
				Value: "solar_system",
			},
			&cli.StringFlag{
				Name:  "character",
				Usage: "character id to search as",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("EVECTL_CHARACTER_ID"),
					yaml.YAML("search.character", src),
					yaml.YAML("character", src),
				),
			},
			&cli.StringFlag{
				Name:  "strict",
				Usage: "only exact matches, true or false",
				Validator: func(value string) error {
					return FlagValidators(value, StrictValidator)
				},
			},
		},
		Action: SearchCommandAction,
		Meta:   meta,
	}).Build()
}
