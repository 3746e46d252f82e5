// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output turns the JSON of a query into rows, then filters, sorts
// and writes them as a text table, JSON or YAML.
package output
