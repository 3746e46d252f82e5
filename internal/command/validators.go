// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/evectl/internal/cacheutil"
	"github.com/staranto/evectl/internal/esi"
)

// GlobalFlagsValidator checks the values that flag validators cannot see,
// such as positional arguments.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	for _, arg := range c.Args().Slice() {
		if err := JammedFlagValidator(arg); err != nil {
			return fmt.Errorf("argument %q %w", arg, err)
		}
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	if !slices.Contains(validOutputFlagValues, value.(string)) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

func LevelValidator(value any) error {
	if _, err := cacheutil.ParseLevel(value.(string)); err != nil {
		return fmt.Errorf("must be one of %v", cacheutil.Levels())
	}
	return nil
}

func LogLevelValidator(value any) error {
	if value.(string) == "" {
		return nil
	}
	if _, err := log.ParseLevel(strings.ToLower(value.(string))); err != nil {
		return errors.New("must be one of debug, info, warn, error or fatal")
	}
	return nil
}

func DurationValidator(value any) error {
	d, err := time.ParseDuration(value.(string))
	if err != nil {
		return fmt.Errorf("must be a duration such as 30s: %w", err)
	}
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func OrderTypeValidator(value any) error {
	if _, err := esi.ParseOrderType(value.(string)); err != nil {
		return errors.New("must be buy or sell")
	}
	return nil
}

func StrictValidator(value any) error {
	if _, err := esi.ParseStrict(value.(string)); err != nil {
		return errors.New("must be true or false")
	}
	return nil
}
