// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// Key used in an --attrs spec to address every attribute at once.
const globalKey = "*"

var lengthRegex = regexp.MustCompile(`-?\d+`)

// Attr is one column of query output.
type Attr struct {
	// gjson path into each ESI result object.
	Key string `yaml:"key"`
	// False when the attr only exists for filtering or sorting.
	Include bool `yaml:"include"`
	// Name of the value in json/yaml output and the column title in text output.
	OutputKey string `yaml:"outputKey"`
	// Comma separated transform flags, see Transform.
	TransformSpec string `yaml:"transformSpec"`
}

// Transform applies TransformSpec to value. Numbers only honour the c
// (thousands separators) flag. Strings honour t (local time), l and u (case)
// and a length, where a negative length ellipsizes in the middle. When a flag
// appears more than once the last one wins, so a per-attr flag beats a global
// one prepended by SetGlobalTransformSpec.
func (a *Attr) Transform(value interface{}) interface{} {
	switch v := value.(type) {
	case float64:
		if strings.ContainsAny(a.TransformSpec, "cC") {
			return humanize.CommafWithDigits(v, 2) //nolint:mnd
		}
		return v
	case string:
		if a.TransformSpec == "" {
			return v
		}
		if strings.ContainsAny(a.TransformSpec, "tT") {
			v = localTime(v)
		}
		v = a.applyCase(v)
		return a.applyLength(v)
	default:
		return value
	}
}

// localTime renders an RFC3339 timestamp in EVECTL_TZ, or TZ. Without either
// the value is left alone.
func localTime(value string) string {
	tz := os.Getenv("EVECTL_TZ")
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return value
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Debugf("unknown timezone: %s", tz)
		return value
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Debugf("not a timestamp: %s", value)
		return value
	}
	return t.In(loc).Format("2006-01-02T15:04:05MST")
}

func (a *Attr) applyCase(value string) string {
	lower := strings.LastIndexAny(a.TransformSpec, "lL")
	upper := strings.LastIndexAny(a.TransformSpec, "uU")

	switch {
	case lower > upper:
		return strings.ToLower(value)
	case upper > lower:
		return strings.ToUpper(value)
	}
	return value
}

func (a *Attr) applyLength(value string) string {
	match := lengthRegex.FindAllString(a.TransformSpec, -1)
	if len(match) == 0 {
		return value
	}

	n, _ := strconv.Atoi(match[len(match)-1])
	width := n
	if width < 0 {
		width = -width
	}
	if len(value) <= width {
		return value
	}

	if n < 0 && width > 3 {
		half := width/2 - 1
		return value[:half] + ".." + value[len(value)-half:]
	}
	return value[:width]
}

// AttrList is the set of attrs a query outputs. It implements the flag value
// interface so it can be filled straight from --attrs.
type AttrList []Attr

// String renders the list back in --attrs syntax.
func (a *AttrList) String() string {
	specs := make([]string, 0, len(*a))
	for _, attr := range *a {
		specs = append(specs, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(specs, ",")
}

// Set parses a comma separated list of key[:output[:transform]] specs. A key
// prefixed with ! is kept for filtering and sorting but not output. A spec
// naming an attr already in the list updates it in place.
func (a *AttrList) Set(value string) error {
	if value == "" || value == globalKey {
		return nil
	}

	for _, spec := range strings.Split(value, ",") {
		attr := parseSpec(spec)
		if i := a.index(attr.Key); i >= 0 {
			(*a)[i].Include = attr.Include
			(*a)[i].OutputKey = attr.OutputKey
			(*a)[i].TransformSpec = attr.TransformSpec
			continue
		}
		*a = append(*a, attr)
	}

	return nil
}

func parseSpec(spec string) Attr {
	fields := strings.Split(spec, ":")

	attr := Attr{Include: true}
	attr.Key = strings.TrimSpace(fields[0])
	if rest, ok := strings.CutPrefix(attr.Key, "!"); ok {
		attr.Include = false
		attr.Key = rest
	}
	attr.Key = strings.TrimPrefix(attr.Key, ".")
	if attr.Key == globalKey {
		attr.Include = false
	}

	switch {
	case len(fields) == 1:
		attr.OutputKey = attr.Key[strings.LastIndex(attr.Key, ".")+1:]
	case strings.TrimSpace(fields[1]) != "":
		attr.OutputKey = strings.TrimSpace(fields[1])
	default:
		attr.OutputKey = attr.Key
	}

	if len(fields) > 2 {
		attr.TransformSpec = strings.TrimSpace(fields[2])
	}

	return attr
}

// index returns the position of the attr addressed by key, either through its
// path or its output key, or -1.
func (a *AttrList) index(key string) int {
	for i, attr := range *a {
		if attr.Key == key || attr.OutputKey == key {
			return i
		}
	}
	return -1
}

// SetGlobalTransformSpec prefixes the transform spec of the first * attr to
// every attr in the list.
func (a *AttrList) SetGlobalTransformSpec() error {
	i := a.index(globalKey)
	if i < 0 || (*a)[i].TransformSpec == "" {
		return nil
	}

	spec := (*a)[i].TransformSpec
	for j := range *a {
		(*a)[j].TransformSpec = spec + "," + (*a)[j].TransformSpec
	}
	return nil
}

func (a *AttrList) Type() string {
	return "list"
}
