// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"

	"github.com/emer/emergent/v2/timer"
)

// snn.Layer holds a fixed set of neurons together with their incoming (extra)
// weights from the previous layer, their lateral (intra) weights within the
// layer, and the layer's own output spikes from the last processed instant.
// All state is owned by the single worker running the layer during Process,
// so no locking is needed.
type Layer struct {

	// name of the layer, unique within the network
	Nm string

	// position of the layer within the network, 0 = first (input-receiving) layer
	Idx int

	// neurons of the layer, index = neuron index
	Neurons []Neuron

	// weights from previous layer: ExtraWts[i][j] is the weight from sending neuron j to neuron i
	ExtraWts [][]float32

	// lateral weights: IntraWts[x][y] is the weight from neuron y to neuron x -- the diagonal is never applied
	IntraWts [][]float32

	// output spikes of this layer at the last processed instant -- the only path for lateral effects
	PrevSpikes []uint8

	// number of sending neurons = number of columns of ExtraWts
	NIn int

	// last processed instant, -1 if none yet
	LastT int

	// total number of spikes emitted by this layer
	SpikeCount int

	// time spent computing instants in this layer
	Time timer.Time
}

// NewLayer returns a new layer with all-zero previous spikes, after checking
// that the neuron count matches the weight matrix shapes and that all extra
// weight rows share the given input width.
func NewLayer(name string, neurons []Neuron, extra, intra [][]float32, nIn int) (*Layer, error) {
	nn := len(neurons)
	if len(extra) != nn {
		return nil, fmt.Errorf("%w: layer %s has %d neurons but %d extra weight rows", ErrInvariant, name, nn, len(extra))
	}
	if len(intra) != nn {
		return nil, fmt.Errorf("%w: layer %s has %d neurons but %d intra weight rows", ErrInvariant, name, nn, len(intra))
	}
	for i := range extra {
		if len(extra[i]) != nIn {
			return nil, fmt.Errorf("%w: layer %s extra weight row %d has %d columns, expected %d", ErrInvariant, name, i, len(extra[i]), nIn)
		}
		if len(intra[i]) != nn {
			return nil, fmt.Errorf("%w: layer %s intra weight row %d has %d columns, expected %d", ErrInvariant, name, i, len(intra[i]), nn)
		}
	}
	ly := &Layer{Nm: name, Neurons: neurons, ExtraWts: extra, IntraWts: intra, NIn: nIn}
	ly.PrevSpikes = make([]uint8, nn)
	ly.LastT = -1
	return ly, nil
}

func (ly *Layer) Name() string  { return ly.Nm }
func (ly *Layer) Index() int    { return ly.Idx }
func (ly *Layer) NNeurons() int { return len(ly.Neurons) }
func (ly *Layer) Label() string { return ly.Nm }
func (ly *Layer) String() string {
	return fmt.Sprintf("%s: %d neurons, %d inputs", ly.Nm, len(ly.Neurons), ly.NIn)
}

// WtSum returns the total weighted input arriving at neuron ni given the
// input spikes of the current instant and the layer's own previous output.
func (ly *Layer) WtSum(ni int, in []uint8) float32 {
	sum := float32(0)
	ew := ly.ExtraWts[ni]
	for j, s := range in {
		if s != 0 {
			sum += ew[j]
		}
	}
	iw := ly.IntraWts[ni]
	for k, s := range ly.PrevSpikes {
		if k == ni || s == 0 {
			continue
		}
		sum += iw[k]
	}
	return sum
}

// ComputeInstant computes the output spikes of the layer at instant t from the
// input spikes of that instant. PrevSpikes is only replaced once every neuron
// has been updated, so all neurons see the same previous output.
// Instants must strictly increase across calls.
func (ly *Layer) ComputeInstant(t int, in []uint8) ([]uint8, error) {
	if len(in) != ly.NIn {
		return nil, fmt.Errorf("%w: layer %s got %d input spikes at t=%d, expected %d", ErrInput, ly.Nm, len(in), t, ly.NIn)
	}
	if err := CheckBinary(in); err != nil {
		return nil, fmt.Errorf("layer %s at t=%d: %w", ly.Nm, t, err)
	}
	if t <= ly.LastT {
		return nil, fmt.Errorf("%w: layer %s got t=%d after t=%d", ErrInput, ly.Nm, t, ly.LastT)
	}
	out := make([]uint8, len(ly.Neurons))
	for ni, nrn := range ly.Neurons {
		if _, spk := nrn.VmFmInput(t, ly.WtSum(ni, in)); spk {
			out[ni] = 1
			ly.SpikeCount++
		}
	}
	ly.PrevSpikes = out
	ly.LastT = t
	return out, nil
}

// Run is the streaming form of ComputeInstant, run by the layer's worker:
// it pulls events from in until in is closed, sending one output event with
// the same timestamp for each, and closes out when done.
// After the first error no more events are sent, but in is still drained so
// that the upstream worker never blocks. The first error is returned.
func (ly *Layer) Run(in <-chan SpikeEvent, out chan<- SpikeEvent) error {
	defer close(out)
	var err error
	for ev := range in {
		if err != nil {
			continue
		}
		ly.Time.Start()
		spk, cerr := ly.ComputeInstant(ev.T, ev.Spikes)
		ly.Time.Stop()
		if cerr != nil {
			err = cerr
			continue
		}
		// PrevSpikes keeps spk, so downstream gets its own copy
		snd := make([]uint8, len(spk))
		copy(snd, spk)
		out <- SpikeEvent{T: ev.T, Spikes: snd}
	}
	return err
}
