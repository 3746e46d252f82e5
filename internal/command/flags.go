// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/evectl/internal/config"
	"github.com/staranto/evectl/internal/esi"
)

// NewTldrFlag returns the --tldr flag, hidden when tldr is not installed.
func NewTldrFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// NewGlobalFlags returns the output flags shared by every query command.
// params[0] is the command name, used as the config namespace.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	ns := params[0]

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				configSources(ns, "color")...,
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				configSources(ns, "output")...,
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+".sort", altsrc.StringSourcer(config.Config.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				configSources(ns, "titles")...,
			),
			Value: false,
		},
	}

	return
}

// NewCacheFlags returns the flags selecting where and how hard evectl
// caches. They are needed by the query commands and by the cache command.
func NewCacheFlags(params ...string) []cli.Flag {
	return []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile(params[0], config.Config.Source, &cli.StringFlag{
			Name:  "cache-level",
			Usage: "cache level: full, memory or disabled",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("EVECTL_CACHE_LEVEL"),
			),
			Value: "full",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, LevelValidator)
			},
		}, "cache.level"),
		NameSpacedValueChainFlagFromConfigFile(params[0], config.Config.Source, &cli.StringFlag{
			Name:  "cache-dir",
			Usage: "directory holding the cache snapshots",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("EVECTL_CACHE_DIR"),
			),
		}, "cache.dir"),
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn, error or fatal",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("EVECTL_LOG"),
			),
			Validator: func(value string) error {
				return FlagValidators(value, LogLevelValidator)
			},
		},
	}
}

// NewESIFlags returns the flags configuring the ESI client.
func NewESIFlags(params ...string) []cli.Flag {
	return []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile(params[0], config.Config.Source, &cli.StringFlag{
			Name:  "esi-url",
			Usage: "ESI base URL",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("EVECTL_ESI_URL"),
			),
			Value: esi.DefaultBaseURL,
		}, "esi.url"),
		NameSpacedValueChainFlagFromConfigFile(params[0], config.Config.Source, &cli.StringFlag{
			Name:  "timeout",
			Usage: "ESI request timeout",
			Value: esi.DefaultTimeout.String(),
			Validator: func(value string) error {
				return FlagValidators(value, DurationValidator)
			},
		}, "esi.timeout"),
		&cli.StringFlag{
			Name:  "token",
			Usage: "bearer token for authenticated endpoints",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("EVECTL_TOKEN"),
			),
		},
		NameSpacedValueChainFlagFromConfigFile(params[0], config.Config.Source, &cli.StringFlag{
			Name:  "user-agent",
			Usage: "User-Agent sent to ESI",
			Value: esi.DefaultUserAgent,
		}, "esi.user_agent"),
	}
}

// configSources returns the config file sources for key, the key under the
// ns namespace first and then the bare key.
func configSources(ns, key string) []cli.ValueSource {
	return configSourcesFrom(config.Config.Source, ns, key)
}

func configSourcesFrom(path, ns, key string) []cli.ValueSource {
	file := altsrc.StringSourcer(path)
	return []cli.ValueSource{
		yaml.YAML(ns+"."+key, file),
		yaml.YAML(key, file),
	}
}

// NameSpacedValueChainFlagFromConfigFile appends the config file sources for
// key to flag's chain, after any environment variables already on it.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag, key string) *cli.StringFlag {
	flag.Sources.Chain = append(flag.Sources.Chain, configSourcesFrom(path, ns, key)...)
	return flag
}

// pathHas reports whether target is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
