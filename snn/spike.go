// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"strings"
)

// SpikeEvent is the binary spike vector of one layer (or of the network input)
// at one time instant. It is the unit of communication between layer workers,
// and is treated as immutable once sent.
type SpikeEvent struct {

	// time instant, starting at 0 and strictly increasing within a stream
	T int

	// one 0/1 value per neuron of the producing layer
	Spikes []uint8
}

// NewSpikeEvent returns an event for instant t, checking that t is
// non-negative and every spike value is 0 or 1.
func NewSpikeEvent(t int, spikes []uint8) (SpikeEvent, error) {
	if t < 0 {
		return SpikeEvent{}, fmt.Errorf("%w: negative timestamp %d", ErrInput, t)
	}
	if err := CheckBinary(spikes); err != nil {
		return SpikeEvent{}, fmt.Errorf("%w at t=%d", err, t)
	}
	return SpikeEvent{T: t, Spikes: spikes}, nil
}

// IsSilent returns true if no neuron spiked in this event.
func (se *SpikeEvent) IsSilent() bool {
	for _, s := range se.Spikes {
		if s != 0 {
			return false
		}
	}
	return true
}

// NSpikes returns the number of neurons that spiked in this event.
func (se *SpikeEvent) NSpikes() int {
	n := 0
	for _, s := range se.Spikes {
		if s != 0 {
			n++
		}
	}
	return n
}

func (se SpikeEvent) String() string {
	return fmt.Sprintf("t=%d %v", se.T, se.Spikes)
}

// CheckBinary returns an ErrInput error for the first value that is not 0 or 1.
func CheckBinary(spikes []uint8) error {
	for i, s := range spikes {
		if s > 1 {
			return fmt.Errorf("%w: spike value %d for neuron %d must be 0 or 1", ErrInput, s, i)
		}
	}
	return nil
}

// CheckSpikes validates a [neuron][time] spike matrix against the expected
// number of neurons, returning the common duration of all rows.
// Rows of unequal length and values other than 0 or 1 are errors.
func CheckSpikes(spikes [][]uint8, nNeurons int) (int, error) {
	if len(spikes) != nNeurons {
		return 0, fmt.Errorf("%w: got %d spike trains, network input has %d neurons", ErrInput, len(spikes), nNeurons)
	}
	dur := 0
	for ni, trn := range spikes {
		if ni == 0 {
			dur = len(trn)
		} else if len(trn) != dur {
			return 0, fmt.Errorf("%w: spike train for neuron %d has %d instants, expected %d", ErrInput, ni, len(trn), dur)
		}
		for t, s := range trn {
			if s > 1 {
				return 0, fmt.Errorf("%w: spike value %d for neuron %d at t=%d must be 0 or 1", ErrInput, s, ni, t)
			}
		}
	}
	return dur, nil
}

// EncodeSpikes transposes a [neuron][time] spike matrix into one SpikeEvent
// per instant, ordered by time. nNeurons is the expected input width.
// Returns the events and the duration (number of instants).
func EncodeSpikes(spikes [][]uint8, nNeurons int) ([]SpikeEvent, int, error) {
	dur, err := CheckSpikes(spikes, nNeurons)
	if err != nil {
		return nil, 0, err
	}
	evs := make([]SpikeEvent, dur)
	for t := range evs {
		sv := make([]uint8, nNeurons)
		for ni := range spikes {
			sv[ni] = spikes[ni][t]
		}
		evs[t] = SpikeEvent{T: t, Spikes: sv}
	}
	return evs, dur, nil
}

// DecodeSpikes scatters events back into a [neuron][time] matrix of nNeurons
// rows by dur instants. Instants with no event stay all zero.
func DecodeSpikes(evs []SpikeEvent, nNeurons, dur int) ([][]uint8, error) {
	out := make([][]uint8, nNeurons)
	for ni := range out {
		out[ni] = make([]uint8, dur)
	}
	for _, ev := range evs {
		if ev.T < 0 || ev.T >= dur {
			return nil, fmt.Errorf("%w: output event t=%d outside of duration %d", ErrInvariant, ev.T, dur)
		}
		if len(ev.Spikes) != nNeurons {
			return nil, fmt.Errorf("%w: output event t=%d has %d spikes, expected %d", ErrInvariant, ev.T, len(ev.Spikes), nNeurons)
		}
		for ni, s := range ev.Spikes {
			out[ni][ev.T] = s
		}
	}
	return out, nil
}

// SpikesString returns a raster printout of a [neuron][time] spike matrix:
// a header row of instants, then one row per neuron.
func SpikesString(spikes [][]uint8) string {
	var b strings.Builder
	b.WriteString("t   ")
	if len(spikes) > 0 {
		for t := range spikes[0] {
			fmt.Fprintf(&b, "%d ", t)
		}
	}
	b.WriteString("\n")
	for ni, trn := range spikes {
		fmt.Fprintf(&b, "N%d  ", ni)
		for _, s := range trn {
			fmt.Fprintf(&b, "%d ", s)
		}
		b.WriteString("\n")
	}
	return b.String()
}
