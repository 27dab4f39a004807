// mnemo.go: package constants and defaults
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import "time"

const (
	// Version of the mnemo cache library
	Version = "v0.1.0-dev"

	// DefaultMaxLive is the default number of entries the residency tier
	// keeps strongly held before it starts reclaiming the coldest ones.
	DefaultMaxLive = 10_000

	// DefaultSweepInterval is the default period between reaper sweeps.
	// The sweep period is independent of the entry TTL.
	DefaultSweepInterval = time.Second
)

// sweepInitialDelay is the fixed delay before the first reaper sweep after
// construction. It is intentionally not configurable.
const sweepInitialDelay = 2 * time.Second
