// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Command evectl queries the EVE Online ESI API for universe, market and
// industry data, keeping what it fetched in a local cache between runs.
package main
