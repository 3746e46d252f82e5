// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package esi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// KeyDelimiter joins the fields of a composite key in its string form. No
// field may contain it.
const KeyDelimiter = "///"

// ErrInvalidKey is wrapped by every composite key encoding or decoding
// failure.
var ErrInvalidKey = errors.New("invalid cache key")

// Strict is the optional strict flag of a search.
type Strict uint8

const (
	StrictUnset Strict = iota
	StrictOn
	StrictOff
)

func (s Strict) String() string {
	switch s {
	case StrictOn:
		return "true"
	case StrictOff:
		return "false"
	default:
		return "None"
	}
}

// ParseStrict is the inverse of Strict.String.
func ParseStrict(s string) (Strict, error) {
	switch s {
	case "None":
		return StrictUnset, nil
	case "true":
		return StrictOn, nil
	case "false":
		return StrictOff, nil
	}
	return StrictUnset, fmt.Errorf("%w: strict must be one of None, true or false, got '%s'", ErrInvalidKey, s)
}

// SearchKey identifies one character search request.
type SearchKey struct {
	CharacterID int32
	Categories  string
	Search      string
	Strict      Strict
}

func (k SearchKey) String() string {
	return strings.Join([]string{
		strconv.FormatInt(int64(k.CharacterID), 10),
		k.Categories,
		k.Search,
		k.Strict.String(),
	}, KeyDelimiter)
}

// Validate reports whether k survives a round trip through its string form.
// A text field may not contain the delimiter, and may not start or end with
// '/', which would merge into a neighbouring delimiter.
func (k SearchKey) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"categories", k.Categories},
		{"search", k.Search},
	} {
		switch {
		case strings.Contains(f.value, KeyDelimiter):
			return fmt.Errorf("%w: %s '%s' contains '%s'", ErrInvalidKey, f.name, f.value, KeyDelimiter)
		case strings.HasPrefix(f.value, "/"), strings.HasSuffix(f.value, "/"):
			return fmt.Errorf("%w: %s '%s' starts or ends with '/'", ErrInvalidKey, f.name, f.value)
		}
	}
	return nil
}

// MarshalText lets SearchKey be used as a JSON object key.
func (k SearchKey) MarshalText() ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return []byte(k.String()), nil
}

func (k *SearchKey) UnmarshalText(text []byte) error {
	parsed, err := ParseSearchKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseSearchKey decodes the string form of a SearchKey: four fields,
// character ID, categories, search text and strict flag.
func ParseSearchKey(s string) (SearchKey, error) {
	fields := strings.Split(s, KeyDelimiter)
	if len(fields) != 4 { //nolint:mnd
		return SearchKey{}, fmt.Errorf("%w: search key needs 4 values separated by '%s', got %d in '%s'",
			ErrInvalidKey, KeyDelimiter, len(fields), s)
	}

	id, err := strconv.ParseInt(fields[0], 10, 32)
	if err != nil {
		return SearchKey{}, fmt.Errorf("%w: invalid character_id '%s': %v", ErrInvalidKey, fields[0], err)
	}

	strict, err := ParseStrict(fields[3])
	if err != nil {
		return SearchKey{}, err
	}

	return SearchKey{
		CharacterID: int32(id),
		Categories:  fields[1],
		Search:      fields[2],
		Strict:      strict,
	}, nil
}

// OrderType selects buy or sell market orders.
type OrderType string

const (
	Buy  OrderType = "Buy"
	Sell OrderType = "Sell"
)

// ParseOrderType accepts buy or sell in any case.
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToLower(s) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}
	return "", fmt.Errorf("%w: order type must be Buy or Sell, got '%s'", ErrInvalidKey, s)
}

// query returns the value ESI expects for the order_type parameter.
func (o OrderType) query() string {
	return strings.ToLower(string(o))
}

// MarketOrderKey identifies the orders of one side of a region's market.
type MarketOrderKey struct {
	RegionID  int32
	OrderType OrderType
}

func (k MarketOrderKey) String() string {
	return strconv.FormatInt(int64(k.RegionID), 10) + KeyDelimiter + string(k.OrderType)
}

func (k MarketOrderKey) MarshalText() ([]byte, error) {
	if k.OrderType != Buy && k.OrderType != Sell {
		return nil, fmt.Errorf("%w: order type must be Buy or Sell, got '%s'", ErrInvalidKey, k.OrderType)
	}
	return []byte(k.String()), nil
}

func (k *MarketOrderKey) UnmarshalText(text []byte) error {
	parsed, err := ParseMarketOrderKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseMarketOrderKey decodes the string form of a MarketOrderKey: region
// ID and order type.
func ParseMarketOrderKey(s string) (MarketOrderKey, error) {
	fields := strings.Split(s, KeyDelimiter)
	if len(fields) != 2 { //nolint:mnd
		return MarketOrderKey{}, fmt.Errorf("%w: market order key needs 2 values separated by '%s', got %d in '%s'",
			ErrInvalidKey, KeyDelimiter, len(fields), s)
	}

	id, err := strconv.ParseInt(fields[0], 10, 32)
	if err != nil {
		return MarketOrderKey{}, fmt.Errorf("%w: invalid region_id '%s': %v", ErrInvalidKey, fields[0], err)
	}

	ot, err := ParseOrderType(fields[1])
	if err != nil {
		return MarketOrderKey{}, err
	}

	return MarketOrderKey{RegionID: int32(id), OrderType: ot}, nil
}
