// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

// Neuron is the capability any neuron model must provide to live in a Layer.
// VmFmInput integrates the weighted input sum arriving at instant t into the
// membrane potential, returning the new potential and whether the neuron fired.
// Implementations keep their own state (last update time, retained potential,
// reset after firing) and are always called with non-decreasing t.
type Neuron interface {
	VmFmInput(t int, wsum float32) (vm float32, spike bool)
}

// ThrNeuron is a stateless threshold unit: its potential is just the weighted
// input sum of the current instant, and it fires iff that sum is >= Thr.
type ThrNeuron struct {
	Thr float32
}

func (tn *ThrNeuron) VmFmInput(t int, wsum float32) (float32, bool) {
	return wsum, wsum >= tn.Thr
}

// NewThrNeurons returns n threshold neurons sharing the same threshold.
func NewThrNeurons(n int, thr float32) []Neuron {
	nrns := make([]Neuron, n)
	for i := range nrns {
		nrns[i] = &ThrNeuron{Thr: thr}
	}
	return nrns
}
