// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/evectl/internal/attrs"
	"github.com/staranto/evectl/internal/config"
	"github.com/staranto/evectl/internal/evecache"
	"github.com/staranto/evectl/internal/meta"
	"github.com/staranto/evectl/internal/output"
)

// lookupLimit caps the concurrent ESI lookups of one command.
const lookupLimit = 8

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr evectl-<subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "evectl-"+subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs. The global transform spec is applied by the output routine.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
	}
	return
}

// OutputOptions collects the output flags of cmd.
func OutputOptions(cmd *cli.Command) output.Options {
	return output.Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
	}
}

// Emit marshals results as JSON and passes it to the common output routine.
func Emit(results any, al attrs.AttrList, cmd *cli.Command) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return output.SliceDiceSpit(raw, al, OutputOptions(cmd), Writer(cmd))
}

// Writer returns the writer results go to. Tests set it on the root command.
func Writer(cmd *cli.Command) io.Writer {
	if cmd.Writer != nil {
		return cmd.Writer
	}
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// QueryCommandBuilder is a helper that constructs a cli.Command for query
// subcommands using a consistent pattern. The builder wires metadata, adds
// the tldr, output, cache and ESI flags, opens the session before the action
// and persists the caches after it.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	flags := append(qcb.Flags, NewTldrFlag())
	flags = append(flags, NewGlobalFlags(qcb.Name)...)
	flags = append(flags, NewCacheFlags(qcb.Name)...)
	flags = append(flags, NewESIFlags(qcb.Name)...)

	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := GlobalFlagsValidator(ctx, c); err != nil {
				return ctx, err
			}
			config.Config.Namespace = qcb.Name
			if c.Bool("tldr") {
				return ctx, nil
			}
			return ctx, OpenSession(ctx, c)
		},
		After:  CloseSession,
		Action: qcb.Action,
	}
}

// QueryActionRunner[T] encapsulates the common query action pattern for all
// query subcommands. It handles the tldr short-circuit, attrs and output,
// with the data fetching provided by FetchFn.
type QueryActionRunner[T any] struct {
	CommandName  string
	DefaultAttrs []string
	FetchFn      func(context.Context, *cli.Command, *evecache.EveCache) ([]T, error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner[T]) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", qar.CommandName)

	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}
	if m.Session == nil || m.Cache == nil {
		return fmt.Errorf("%s: no session", qar.CommandName)
	}

	attrs := BuildAttrs(cmd, qar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs)

	results, err := qar.FetchFn(ctx, cmd, m.Cache)
	if err != nil {
		return err
	}

	return Emit(results, attrs, cmd)
}

// ParseIDs converts the positional arguments into ESI ids.
func ParseIDs[I int32 | int64](args []string) ([]I, error) {
	if len(args) == 0 {
		return nil, errors.New("at least one id is required")
	}

	bits := 32
	var zero I
	if _, ok := any(zero).(int64); ok {
		bits = 64
	}

	ids := make([]I, 0, len(args))
	for _, a := range args {
		for _, f := range strings.Split(a, ",") {
			if f == "" {
				continue
			}
			n, err := strconv.ParseInt(strings.TrimSpace(f), 10, bits)
			if err != nil {
				return nil, fmt.Errorf("invalid id '%s': %w", f, err)
			}
			ids = append(ids, I(n))
		}
	}
	return ids, nil
}

// LookupAll calls fn for every id concurrently and returns the results in
// id order. The first failure cancels the remaining lookups.
func LookupAll[I comparable, T any](
	ctx context.Context,
	ids []I,
	fn func(context.Context, I) (T, error),
) ([]T, error) {
	results := make([]T, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupLimit)
	for i, id := range ids {
		g.Go(func() error {
			v, err := fn(gctx, id)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
