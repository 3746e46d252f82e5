// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/evectl/internal/command"
)

// Minimal doc generator:
// - Walks the evectl command tree
// - Generates:
//   - docs/commands/evectl-<cmd>.md
//   - docs/man/share/man1/evectl-<cmd>.1 via md2man
//   - docs/tldr/evectl-<cmd>.md from the usage line and flags

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, d := range []string{commandsDir, manOutDir, tldrOutDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			fatalf("creating output dir %s: %v", d, err)
		}
	}

	app, err := command.InitApp(context.Background(), []string{"evectl"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	var processed int
	for _, cmd := range app.Commands {
		if cmd.Hidden {
			continue
		}

		md := commandMarkdown(cmd)
		name := "evectl-" + cmd.Name

		if err := writeFileIfChanged(filepath.Join(commandsDir, name+".md"), []byte(md), writeOnlyIfChanged); err != nil {
			fatalf("writing markdown for %s: %v", cmd.Name, err)
		}

		manPath := filepath.Join(manOutDir, name+".1")
		if err := writeFileIfChanged(manPath, md2man.Render([]byte(md)), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", cmd.Name, err)
		}

		tldrPath := filepath.Join(tldrOutDir, name+".md")
		if err := writeFileIfChanged(tldrPath, []byte(buildTLDR(cmd)), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", cmd.Name, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no commands found")
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

// commandMarkdown renders cmd in the man page layout md2man expects: a
// title line, then NAME, SYNOPSIS, OPTIONS and COMMANDS sections.
func commandMarkdown(cmd *cli.Command) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%% EVECTL-%s 1\n\n", strings.ToUpper(cmd.Name))
	b.WriteString("# NAME\n\n")
	fmt.Fprintf(&b, "evectl-%s - %s\n\n", cmd.Name, cmd.Usage)

	b.WriteString("# SYNOPSIS\n\n")
	fmt.Fprintf(&b, "`%s`\n\n", usageLine(cmd))

	if len(cmd.Commands) > 0 {
		b.WriteString("# COMMANDS\n\n")
		for _, sub := range cmd.Commands {
			fmt.Fprintf(&b, "**%s**\n: %s\n\n", sub.Name, sub.Usage)
		}
	}

	flags := visibleFlags(cmd)
	for _, sub := range cmd.Commands {
		for _, f := range visibleFlags(sub) {
			if !slices.ContainsFunc(flags, func(g flagDoc) bool { return g.names == f.names }) {
				flags = append(flags, f)
			}
		}
	}
	if len(flags) > 0 {
		b.WriteString("# OPTIONS\n\n")
		for _, f := range flags {
			fmt.Fprintf(&b, "**%s**\n: %s\n\n", f.names, f.usage)
		}
	}

	return b.String()
}

type flagDoc struct {
	names string
	usage string
}

func visibleFlags(cmd *cli.Command) []flagDoc {
	var docs []flagDoc
	for _, f := range cmd.Flags {
		if vf, ok := f.(cli.VisibleFlag); ok && !vf.IsVisible() {
			continue
		}
		var names []string
		for _, n := range f.Names() {
			if len(n) == 1 {
				names = append(names, "-"+n)
			} else {
				names = append(names, "--"+n)
			}
		}
		usage := ""
		if df, ok := f.(cli.DocGenerationFlag); ok {
			usage = df.GetUsage()
		}
		docs = append(docs, flagDoc{names: strings.Join(names, ", "), usage: usage})
	}
	return docs
}

func usageLine(cmd *cli.Command) string {
	if cmd.UsageText != "" {
		return cmd.UsageText
	}
	return "evectl " + cmd.Name + " [options]"
}

func buildTLDR(cmd *cli.Command) string {
	var b strings.Builder
	b.WriteString("# evectl-" + cmd.Name + "\n\n")
	if cmd.Usage != "" {
		b.WriteString("> " + capitalize(cmd.Usage) + ".\n")
	} else {
		b.WriteString("> evectl " + cmd.Name + "\n")
	}
	b.WriteString("> More information: https://github.com/staranto/evectl.\n\n")

	b.WriteString("- Run the command:\n\n")
	b.WriteString("`" + sanitizeCommand(usageLine(cmd)) + "`\n")

	for _, sub := range cmd.Commands {
		b.WriteString("\n- " + capitalize(sub.Usage) + ":\n\n")
		b.WriteString("`" + sanitizeCommand(usageLine(sub)) + "`\n")
	}

	b.WriteString("\n- Show help for the command:\n\n")
	b.WriteString("`evectl " + cmd.Name + " --help`\n")
	return b.String()
}

// sanitizeCommand rewrites <placeholders> in the tldr {{...}} style and
// compresses runs of whitespace.
func sanitizeCommand(s string) string {
	s = strings.NewReplacer("<", "{{", ">", "}}").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
