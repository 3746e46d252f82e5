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

// ESI leaves the id out of some objects, so these rows put it back.
type (
	structureRow struct {
		StructureID int64 `json:"structure_id"`
		esi.Structure
	}
	corporationRow struct {
		CorporationID int32 `json:"corporation_id"`
		esi.Corporation
	}
	allianceRow struct {
		AllianceID int32 `json:"alliance_id"`
		esi.Alliance
	}
)

// lookupSpec describes a command that fetches one object per id argument.
type lookupSpec[I int32 | int64, T any] struct {
	name         string
	usage        string
	defaultAttrs []string
	fetch        func(*evecache.EveCache) func(context.Context, I) (T, error)
}

func (ls lookupSpec[I, T]) action(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[T]{
		CommandName:  ls.name,
		DefaultAttrs: ls.defaultAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command, ec *evecache.EveCache) ([]T, error) {
			ids, err := ParseIDs[I](cmd.Args().Slice())
			if err != nil {
				return nil, err
			}
			return LookupAll(ctx, ids, ls.fetch(ec))
		},
	}
	return runner.Run(ctx, cmd)
}

func (ls lookupSpec[I, T]) build(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      ls.name,
		Usage:     ls.usage,
		UsageText: "evectl " + ls.name + " <id>... [options]",
		Action:    ls.action,
		Meta:      meta,
	}).Build()
}

// SystemCommandBuilder constructs the "system" command.
func SystemCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return lookupSpec[int32, esi.System]{
		name:         "system",
		usage:        "solar system query",
		defaultAttrs: []string{"system_id:id", "name", "security_status:sec", "constellation_id:constellation"},
		fetch: func(ec *evecache.EveCache) func(context.Context, int32) (esi.System, error) {
			return ec.System
		},
	}.build(meta)
}

// ConstellationCommandBuilder constructs the "constellation" command.
func ConstellationCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return lookupSpec[int32, esi.Constellation]{
		name:         "constellation",
		usage:        "constellation query",
		defaultAttrs: []string{"constellation_id:id", "name", "region_id:region"},
		fetch: func(ec *evecache.EveCache) func(context.Context, int32) (esi.Constellation, error) {
			return ec.Constellation
		},
	}.build(meta)
}

// StationCommandBuilder constructs the "station" command.
func StationCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return lookupSpec[int32, esi.Station]{
		name:         "station",
		usage:        "NPC station query",
		defaultAttrs: []string{"station_id:id", "name", "system_id:system", "owner"},
		fetch: func(ec *evecache.EveCache) func(context.Context, int32) (esi.Station, error) {
			return ec.Station
		},
	}.build(meta)
}

// StructureCommandBuilder constructs the "structure" command. Structures
// need a token.
func StructureCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return lookupSpec[int64, structureRow]{
		name:         "structure",
		usage:        "player structure query",
		defaultAttrs: []string{"structure_id:id", "name", "solar_system_id:system", "owner_id:owner"},
		fetch: func(ec *evecache.EveCache) func(context.Context, int64) (structureRow, error) {
			return func(ctx context.Context, id int64) (structureRow, error) {
				s, err := ec.Structure(ctx, id)
				return structureRow{StructureID: id, Structure: s}, err
			}
		},
	}.build(meta)
}

// TypeCommandBuilder constructs the "type" command.
func TypeCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return lookupSpec[int32, esi.Type]{
		name:         "type",
		usage:        "item type query",
		defaultAttrs: []string{"type_id:id", "name", "group_id:group", "volume"},
		fetch: func(ec *evecache.EveCache) func(context.Context, int32) (esi.Type, error) {
			return ec.Type
		},
	}.build(meta)
}

// CorpCommandBuilder constructs the "corp" command.
func CorpCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return lookupSpec[int32, corporationRow]{
		name:         "corp",
		usage:        "corporation query",
		defaultAttrs: []string{"corporation_id:id", "name", "ticker", "member_count:members", "alliance_id:alliance"},
		fetch: func(ec *evecache.EveCache) func(context.Context, int32) (corporationRow, error) {
			return func(ctx context.Context, id int32) (corporationRow, error) {
				c, err := ec.Corporation(ctx, id)
				return corporationRow{CorporationID: id, Corporation: c}, err
			}
		},
	}.build(meta)
}

// AllianceCommandBuilder constructs the "alliance" command.
func AllianceCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return lookupSpec[int32, allianceRow]{
		name:         "alliance",
		usage:        "alliance query",
		defaultAttrs: []string{"alliance_id:id", "name", "ticker", "date_founded:founded"},
		fetch: func(ec *evecache.EveCache) func(context.Context, int32) (allianceRow, error) {
			return func(ctx context.Context, id int32) (allianceRow, error) {
				a, err := ec.Alliance(ctx, id)
				return allianceRow{AllianceID: id, Alliance: a}, err
			}
		},
	}.build(meta)
}
