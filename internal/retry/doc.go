// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package retry re-invokes a fallible operation with a constant delay
// between attempts, stopping early on errors that report themselves as not
// worth retrying.
package retry
