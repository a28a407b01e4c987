// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lif provides the leaky integrate-and-fire neuron model for snn layers.

Between updates the membrane potential decays exponentially toward the resting
potential, with time constant Tau measured in instants. At each update the
weighted input sum is added, and if the result exceeds the threshold the neuron
fires and its potential is set to the reset value:

	Vm = Rest + (Vm - Rest) * exp(-(t - LastT) / Tau) + wsum
	spike = Vm > Thr; if spike { Vm = Reset }

Decay is applied lazily, only when the neuron is next updated, so instants in
which the layer receives no input cost nothing.
*/
package lif

import (
	"github.com/emer/snn/snn"
	"github.com/goki/mat32"
)

// lif.Params are the parameters of the leaky integrate-and-fire model.
type Params struct {

	// firing threshold: the neuron fires when Vm goes above this value
	Thr float32 `def:"0.3" yaml:"thr"`

	// resting potential, toward which Vm decays, and the initial Vm
	Rest float32 `def:"0.05" yaml:"rest"`

	// value Vm is set to after firing
	Reset float32 `def:"0.1" yaml:"reset"`

	// time constant of the decay toward Rest, in instants
	Tau float32 `def:"1" min:"0" yaml:"tau"`

	// rate = 1 / Tau
	Dt float32 `view:"-" json:"-" xml:"-" yaml:"-"`
}

func (lp *Params) Defaults() {
	lp.Thr = 0.3
	lp.Rest = 0.05
	lp.Reset = 0.1
	lp.Tau = 1
	lp.Update()
}

// Update must be called after any changes to parameters
func (lp *Params) Update() {
	if lp.Tau > 0 {
		lp.Dt = 1 / lp.Tau
	} else {
		lp.Dt = 0
	}
}

// Decay returns the factor by which the distance of Vm from Rest shrinks over
// dt instants. A Tau of 0 means no memory at all beyond the current instant.
func (lp *Params) Decay(dt int) float32 {
	if dt <= 0 {
		return 1
	}
	if lp.Dt == 0 {
		return 0
	}
	return mat32.Exp(-float32(dt) * lp.Dt)
}

// lif.Neuron is one leaky integrate-and-fire neuron, implementing snn.Neuron.
type Neuron struct {
	Params

	// membrane potential
	Vm float32

	// instant of the last update
	LastT int
}

var _ snn.Neuron = (*Neuron)(nil)

// New returns a neuron with the given threshold, resting potential, reset
// potential and time constant, with Vm at rest.
func New(thr, rest, reset, tau float32) *Neuron {
	nrn := &Neuron{Params: Params{Thr: thr, Rest: rest, Reset: reset, Tau: tau}}
	nrn.Update()
	nrn.InitVm()
	return nrn
}

// NewFromParams returns a neuron with a copy of the given params, with Vm at rest.
func NewFromParams(lp *Params) *Neuron {
	return New(lp.Thr, lp.Rest, lp.Reset, lp.Tau)
}

// NewNeurons returns n neurons sharing the same params, as snn.Neuron values
// ready for a Builder layer.
func NewNeurons(n int, lp *Params) []snn.Neuron {
	nrns := make([]snn.Neuron, n)
	for i := range nrns {
		nrns[i] = NewFromParams(lp)
	}
	return nrns
}

// InitVm sets the membrane potential to rest and the last update to instant 0.
func (nrn *Neuron) InitVm() {
	nrn.Vm = nrn.Rest
	nrn.LastT = 0
}

// VmFmInput decays Vm over the instants since the last update, adds the
// weighted input sum, and fires if the result is above threshold.
// The returned potential is the one reached before any reset.
func (nrn *Neuron) VmFmInput(t int, wsum float32) (float32, bool) {
	vm := nrn.Rest + (nrn.Vm-nrn.Rest)*nrn.Decay(t-nrn.LastT) + wsum
	nrn.LastT = t
	if vm > nrn.Thr {
		nrn.Vm = nrn.Reset
		return vm, true
	}
	nrn.Vm = vm
	return vm, false
}
