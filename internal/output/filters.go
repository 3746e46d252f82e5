// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/evectl/internal/attrs"
)

// A filter is key, operand, target. The operand is one of = ^ ~ < > @ /,
// optionally preceded by ! to negate it.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is one parsed --filter expression.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters splits spec on "," (or EVECTL_FILTER_DELIM) and parses each
// expression. Malformed expressions are logged and dropped.
func BuildFilters(spec string) []Filter {
	if spec == "" {
		return nil
	}

	delim := ","
	if d := os.Getenv("EVECTL_FILTER_DELIM"); d != "" {
		delim = d
	}

	exprs := strings.Split(spec, delim)
	filters := make([]Filter, 0, len(exprs))
	for _, expr := range exprs {
		m := filterRegex.FindStringSubmatch(expr)
		if m == nil || strings.TrimSpace(m[1]) == "" {
			log.Errorf("invalid filter: %s", expr)
			continue
		}

		operand, negate := strings.CutPrefix(m[2], "!")
		filters = append(filters, Filter{
			Key:     strings.TrimSpace(m[1]),
			Negate:  negate,
			Operand: operand,
			Target:  m[3],
		})
	}

	return filters
}

// FilterDataset keeps the elements of candidates that pass every filter in
// spec and reduces each to a row keyed by the attrs' output keys. Values are
// not transformed here.
func FilterDataset(candidates gjson.Result, al attrs.AttrList, spec string) []map[string]interface{} {
	filters := BuildFilters(spec)
	rows := make([]map[string]interface{}, 0)

	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, al, filters) {
			continue
		}

		row := make(map[string]interface{}, len(al))
		for _, attr := range al {
			if attr.Key == "*" {
				continue
			}
			row[attr.OutputKey] = candidate.Get(attr.Key).Value()
		}
		rows = append(rows, row)
	}

	return rows
}

// filterPath maps a filter key to a gjson path. An attr's output key is tried
// before the key as a raw path, so a renamed column filters by its title.
func filterPath(candidate gjson.Result, al attrs.AttrList, key string) string {
	for _, attr := range al {
		if attr.OutputKey == key {
			return attr.Key
		}
	}
	if candidate.Get(key).Exists() {
		return key
	}
	return ""
}

// applyFilters reports whether candidate passes every filter. A filter whose
// key resolves to nothing is skipped; one whose value is null fails.
func applyFilters(candidate gjson.Result, al attrs.AttrList, filters []Filter) bool {
	for _, f := range filters {
		path := filterPath(candidate, al, f.Key)
		if path == "" {
			log.Debugf("filter key not found: %s", f.Key)
			continue
		}

		var ok bool
		switch v := candidate.Get(path).Value().(type) {
		case nil:
			return false
		case string:
			ok = checkStringOperand(v, f)
		case bool:
			ok = checkStringOperand(strconv.FormatBool(v), f)
		case float64:
			ok = checkNumericOperand(v, f)
		default:
			ok = f.Operand != "@" || checkContainsOperand(v, f)
		}

		if !ok {
			return false
		}
	}

	return true
}

// checkContainsOperand tests membership of the target in a list, or among a
// map's keys.
func checkContainsOperand(value interface{}, f Filter) bool {
	var found bool
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if InterfaceToString(item) == f.Target {
				found = true
				break
			}
		}
	case map[string]any:
		_, found = v[f.Target]
	default:
		log.Errorf("cannot test membership in %T", value)
		return false
	}
	return found != f.Negate
}

// checkNumericOperand compares numerically for = < and >. Other operands
// compare the value's string form.
func checkNumericOperand(value float64, f Filter) bool {
	if !strings.Contains("=<>", f.Operand) {
		return checkStringOperand(InterfaceToString(value), f)
	}

	target, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		log.Errorf("invalid numeric target: %s", f.Target)
		return false
	}

	var match bool
	switch f.Operand {
	case "=":
		match = value == target
	case ">":
		match = value > target
	case "<":
		match = value < target
	}
	return match != f.Negate
}

func checkStringOperand(value string, f Filter) bool {
	var match bool
	switch f.Operand {
	case "=":
		match = value == f.Target
	case "~":
		match = strings.EqualFold(value, f.Target)
	case "^":
		match = strings.HasPrefix(value, f.Target)
	case ">":
		match = value > f.Target
	case "<":
		match = value < f.Target
	case "@":
		match = strings.Contains(value, f.Target)
	case "/":
		re, err := regexp.Compile(f.Target)
		if err != nil {
			log.Errorf("invalid regex: %s", f.Target)
			return false
		}
		match = re.MatchString(value)
	default:
		log.Errorf("unsupported filter operand: %s", f.Operand)
		return false
	}
	return match != f.Negate
}
