// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/staranto/evectl/internal/attrs"
	"github.com/staranto/evectl/internal/config"
)

// Options are the rendering flags shared by every query command.
type Options struct {
	// Format is one of text, json, yaml or raw.
	Format string
	Filter string
	Sort   string
	Titles bool
	Color  bool
}

// SliceDiceSpit renders raw, a JSON array of ESI results, to w in the format
// opts asks for. Rows are filtered, then transformed, then sorted. raw output
// skips all three.
func SliceDiceSpit(raw []byte, al attrs.AttrList, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	if opts.Format == "raw" {
		_, err := fmt.Fprintln(w, string(raw))
		return err
	}

	if !gjson.ValidBytes(raw) {
		return errors.New("cannot render invalid JSON")
	}

	if err := al.SetGlobalTransformSpec(); err != nil {
		return err
	}

	rows := FilterDataset(gjson.ParseBytes(raw), al, opts.Filter)
	transform(rows, al)
	SortDataset(rows, opts.Sort)

	var (
		out []byte
		err error
	)
	switch opts.Format {
	case "json":
		out, err = json.Marshal(included(rows, al))
		out = append(out, '\n')
	case "yaml":
		out, err = yaml.Marshal(included(rows, al))
	default:
		return TableWriter(rows, al, opts, w)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s output: %w", opts.Format, err)
	}

	_, err = w.Write(out)
	return err
}

func transform(rows []map[string]interface{}, al attrs.AttrList) {
	for _, attr := range al {
		if attr.TransformSpec == "" {
			continue
		}
		for _, row := range rows {
			row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
		}
	}
}

// included drops the columns that exist only for filtering and sorting.
func included(rows []map[string]interface{}, al attrs.AttrList) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		r := make(map[string]interface{}, len(al))
		for _, attr := range al {
			if attr.Include {
				r[attr.OutputKey] = row[attr.OutputKey]
			}
		}
		out = append(out, r)
	}
	return out
}

// TableWriter writes rows as a borderless text table, one column per
// included attr. Empty cells print as "-". Colors are only used on a
// terminal.
func TableWriter(rows []map[string]interface{}, al attrs.AttrList, opts Options, w io.Writer) error {
	if len(rows) == 0 {
		return nil
	}

	var headers []string
	for _, attr := range al {
		if attr.Include {
			headers = append(headers, attr.OutputKey)
		}
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, 0, len(headers))
		for _, attr := range al {
			if attr.Include {
				line = append(line, InterfaceToString(row[attr.OutputKey], "-"))
			}
		}
		cells = append(cells, line)
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		StyleFunc(cellStyler(opts.Color && isTerminal(w))).
		Rows(cells...)

	if opts.Titles {
		// Hidden header border still takes a line; turn it off.
		t = t.Headers(headers...).BorderHeader(false)
	}

	_, err := fmt.Fprintln(w, t)
	return err
}

// cellStyler pads every column but the first by the configured padding and,
// with color, stripes the rows.
func cellStyler(color bool) table.StyleFunc {
	pad, _ := config.GetInt("padding", 1)
	log.Debugf("padding: %v", pad)

	base := lipgloss.NewStyle().Align(lipgloss.Left)
	header, even, odd := base, base, base
	if color {
		h, e, o := getColors("colors")
		header = header.Foreground(lipgloss.Color(h))
		even = even.Foreground(lipgloss.Color(e))
		odd = odd.Foreground(lipgloss.Color(o))
	}

	return func(row, col int) lipgloss.Style {
		style := odd
		switch {
		case row == table.HeaderRow:
			style = header
		case row%2 == 0:
			style = even
		}
		if col > 0 {
			style = style.PaddingLeft(pad)
		}
		return style
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// getColors returns the title, even row and odd row colors under key.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(key+".title", "#f6be00")
	even, _ = config.GetString(key+".even", "#ffffff")
	odd, _ = config.GetString(key+".odd", "#00c8f0")
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		if value == "" {
			return emptyValue[0]
		}
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		// IDs and counts arrive as float64 from gjson; keep them integral.
		if value == math.Trunc(value) && math.Abs(value) < 1e15 {
			return strconv.FormatFloat(value, 'f', 0, 64)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		if rv := reflect.ValueOf(value); (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.Len() == 0 {
			return emptyValue[0]
		}
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
