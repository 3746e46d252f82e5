// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package esi is a small client for the EVE Swagger Interface. It covers
// only the endpoints evectl caches, plus the composite keys some of those
// datasets are indexed by.
package esi
