// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"strings"

	"github.com/goki/ki/kit"
)

// SilentMode determines what the network does with input instants in which
// no input neuron spikes.
type SilentMode int

//go:generate stringer -type=SilentMode

var KiT_SilentMode = kit.Enums.AddEnum(SilentModeN, kit.NotBitFlag, nil)

func (ev SilentMode) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *SilentMode) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The silent instant modes
const (
	// SkipSilent never sends an all-zero input instant into the pipeline:
	// no layer is updated at that instant, neuron leak is applied lazily at the
	// next non-silent instant, and the output column for that instant is all zero.
	SkipSilent SilentMode = iota

	// ForwardSilent sends every input instant through the pipeline, so that
	// lateral effects of the previous instant and the reset of PrevSpikes
	// also happen during externally silent instants.
	ForwardSilent

	SilentModeN
)

// SilentModeFromString parses a mode name, case-insensitively, also accepting
// the short forms "skip" and "forward".
func SilentModeFromString(s string) (SilentMode, error) {
	ls := strings.ToLower(s)
	for sm := SkipSilent; sm < SilentModeN; sm++ {
		nm := strings.ToLower(sm.String())
		if ls == nm || ls+"silent" == nm {
			return sm, nil
		}
	}
	return SkipSilent, fmt.Errorf("%w: unknown silent mode %q", ErrInput, s)
}
