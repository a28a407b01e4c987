// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"log"
	"strings"

	"github.com/emer/etable/v2/minmax"
)

// LayerSpec is the description of one layer collected by a Builder.
type LayerSpec struct {
	Name     string
	Neurons  []Neuron
	ExtraWts [][]float32
	IntraWts [][]float32
}

// Builder assembles a Network one layer at a time, in feed-forward order.
// Nothing is checked until Build, which reports every problem found at once.
//
//	net, err := snn.NewBuilder("Net").
//		AddLayer("Hidden", nrns, extra, intra).
//		AddLayer("Output", onrns, oextra, ointra).
//		Build()
type Builder struct {

	// name of the network to build
	Nm string

	// input width of the network -- 0 = infer from the first layer's extra weights
	NIn int

	// allowed range of extra (feed-forward) weights
	ExtraRange minmax.F32

	// allowed range of intra (lateral) weights -- diagonal entries are ignored
	IntraRange minmax.F32

	// silent instant mode of the network to build
	Silent SilentMode

	// channel capacity of the network to build
	ChanCap int

	// layers added so far
	Lays []LayerSpec
}

// NewBuilder returns a builder with the default weight ranges:
// [0,1] for extra weights and [-1,0] for intra weights.
func NewBuilder(name string) *Builder {
	bd := &Builder{Nm: name, ChanCap: DefaultChanCap}
	bd.ExtraRange.Set(0, 1)
	bd.IntraRange.Set(-1, 0)
	return bd
}

// SetInputs sets the input width of the network explicitly, which the first
// layer's extra weights must then match.
func (bd *Builder) SetInputs(nIn int) *Builder {
	bd.NIn = nIn
	return bd
}

// SetSilent sets the silent instant mode of the network.
func (bd *Builder) SetSilent(sm SilentMode) *Builder {
	bd.Silent = sm
	return bd
}

// AddLayer adds a layer of neurons with its extra weights (one row per neuron,
// one column per neuron of the previous layer, or per network input for the
// first layer) and its square intra weights matrix, where IntraWts[x][y] is
// the weight from neuron y to neuron x.
// If name is empty, the layer is named by its position.
func (bd *Builder) AddLayer(name string, neurons []Neuron, extra, intra [][]float32) *Builder {
	if name == "" {
		name = fmt.Sprintf("Layer%d", len(bd.Lays))
	}
	bd.Lays = append(bd.Lays, LayerSpec{Name: name, Neurons: neurons, ExtraWts: extra, IntraWts: intra})
	return bd
}

// AddLayerWts adds a layer using the weights of a LayerWts record, as read
// from a weights file.
func (bd *Builder) AddLayerWts(lw *LayerWts, neurons []Neuron) *Builder {
	return bd.AddLayer(lw.Layer, neurons, lw.Extra, lw.Intra)
}

// Build checks all the layers added so far and returns the network.
// Any shape or range violation aborts the whole construction with an
// ErrConstruction error listing every problem.
func (bd *Builder) Build() (*Network, error) {
	var emsg []string
	if len(bd.Lays) == 0 {
		emsg = append(emsg, "no layers")
	}
	nIn := bd.NIn
	if nIn == 0 && len(bd.Lays) > 0 && len(bd.Lays[0].ExtraWts) > 0 {
		nIn = len(bd.Lays[0].ExtraWts[0])
	}
	if len(bd.Lays) > 0 && nIn <= 0 {
		emsg = append(emsg, "network input width must be > 0")
	}
	if bd.ChanCap < 0 {
		emsg = append(emsg, fmt.Sprintf("channel capacity %d must be >= 0", bd.ChanCap))
	}
	names := make(map[string]bool, len(bd.Lays))
	prvN := nIn
	for li := range bd.Lays {
		ls := &bd.Lays[li]
		if names[ls.Name] {
			emsg = append(emsg, fmt.Sprintf("layer %d: duplicate layer name %s", li, ls.Name))
		}
		names[ls.Name] = true
		emsg = append(emsg, bd.checkLayer(li, ls, prvN)...)
		prvN = len(ls.Neurons)
	}
	if len(emsg) > 0 {
		err := fmt.Errorf("%w: network %s:\n\t%s", ErrConstruction, bd.Nm, strings.Join(emsg, "\n\t"))
		log.Println(err)
		return nil, err
	}

	layers := make([]*Layer, len(bd.Lays))
	prvN = nIn
	for li := range bd.Lays {
		ls := &bd.Lays[li]
		nrns := make([]Neuron, len(ls.Neurons))
		copy(nrns, ls.Neurons)
		ly, err := NewLayer(ls.Name, nrns, CopyWts(ls.ExtraWts), CopyWts(ls.IntraWts), prvN)
		if err != nil {
			log.Println(err)
			return nil, err
		}
		layers[li] = ly
		prvN = ly.NNeurons()
	}
	nt, err := NewNetwork(bd.Nm, layers)
	if err != nil {
		log.Println(err)
		return nil, err
	}
	nt.Silent = bd.Silent
	nt.ChanCap = bd.ChanCap
	return nt, nil
}

// checkLayer returns a message for each problem with layer li, which receives
// nIn inputs.
func (bd *Builder) checkLayer(li int, ls *LayerSpec, nIn int) []string {
	var emsg []string
	errf := func(format string, args ...any) {
		emsg = append(emsg, fmt.Sprintf("layer %d (%s): ", li, ls.Name)+fmt.Sprintf(format, args...))
	}
	nn := len(ls.Neurons)
	if nn == 0 {
		errf("no neurons")
	}
	for ni, nrn := range ls.Neurons {
		if nrn == nil {
			errf("neuron %d is nil", ni)
		}
	}
	if len(ls.ExtraWts) != nn {
		errf("%d neurons but %d extra weight rows", nn, len(ls.ExtraWts))
	}
	for ri, row := range ls.ExtraWts {
		if len(row) != nIn {
			errf("extra weight row %d has %d columns, previous layer has %d neurons", ri, len(row), nIn)
		}
		for ci, wt := range row {
			if !bd.ExtraRange.InRange(wt) {
				errf("extra weight [%d][%d] = %g outside of range [%g, %g]", ri, ci, wt, bd.ExtraRange.Min, bd.ExtraRange.Max)
			}
		}
	}
	if len(ls.IntraWts) != nn {
		errf("%d neurons but %d intra weight rows", nn, len(ls.IntraWts))
	}
	for ri, row := range ls.IntraWts {
		if len(row) != nn {
			errf("intra weight row %d has %d columns, layer has %d neurons", ri, len(row), nn)
		}
		for ci, wt := range row {
			if ci == ri {
				continue
			}
			if !bd.IntraRange.InRange(wt) {
				errf("intra weight [%d][%d] = %g outside of range [%g, %g]", ri, ci, wt, bd.IntraRange.Min, bd.IntraRange.Max)
			}
		}
	}
	return emsg
}

// CopyWts returns a deep copy of a weight matrix.
func CopyWts(wts [][]float32) [][]float32 {
	cp := make([][]float32, len(wts))
	for i, row := range wts {
		cp[i] = make([]float32, len(row))
		copy(cp[i], row)
	}
	return cp
}
