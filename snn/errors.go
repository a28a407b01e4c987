// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import "errors"

// Error categories. All are fatal for the call that returns them:
// nothing is retried and no partial results are ever returned.
var (
	// ErrConstruction is returned by Builder.Build for shape or range violations
	// in the network description.
	ErrConstruction = errors.New("snn: invalid network construction")

	// ErrInput is returned for malformed spike input: wrong dimensions,
	// values outside {0,1}, or non-increasing timestamps.
	ErrInput = errors.New("snn: invalid spike input")

	// ErrInvariant signals internal inconsistency between layer state and the
	// data flowing through it, which indicates a bug in whatever assembled the layers.
	ErrInvariant = errors.New("snn: internal invariant violated")

	// ErrBusy is returned when Process is called on a network that is already processing.
	ErrBusy = errors.New("snn: network is already processing")
)
