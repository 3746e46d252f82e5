// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/staranto/evectl/internal/command"
	mylog "github.com/staranto/evectl/internal/log"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(realMain(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// realMain runs evectl and returns the process exit code: 1 when the command
// tree cannot be built, 2 when the command fails.
func realMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	mylog.InitLogger()

	if len(args) < 2 {
		fmt.Fprintln(stderr, "No command specified.")
		args = append(args, "--help")
	}

	if slices.Contains(args[1:], "--version") || slices.Contains(args[1:], "-v") {
		fmt.Fprintln(stdout, version)
		return 0
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	app.Writer = stdout
	app.ErrWriter = stderr

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	return 0
}
