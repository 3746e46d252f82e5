// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command builds the evectl command tree. Every query command shares
// the output, cache and ESI flags and runs inside a session that opens the
// cache before the action and persists it afterwards.
package command
