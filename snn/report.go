// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"sort"
	"strings"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/v2/timer"
)

//////////////////////////////////////////////////////////////////////////////////////
//  Misc Reports

// SizeReport returns a string reporting the size of each layer in the network,
// and the total memory footprint of the weights.
func (nt *Network) SizeReport() string {
	var b strings.Builder
	neur := 0
	syn := 0
	synMem := 0
	wsz := int(unsafe.Sizeof(float32(0)))
	for _, ly := range nt.Layers {
		nn := ly.NNeurons()
		ns := nn*ly.NIn + nn*nn
		pmem := ns * wsz
		neur += nn
		syn += ns
		synMem += pmem
		fmt.Fprintf(&b, "%14s:\t Neurons: %d\t Inputs: %d\t Wts: %d\t WtMem: %v\n", ly.Nm, nn, ly.NIn, ns, datasize.ByteSize(pmem).HumanReadable())
	}
	fmt.Fprintf(&b, "\n%14s:\t Neurons: %d\t Wts: %d\t WtMem: %v\n", nt.Nm, neur, syn, datasize.ByteSize(synMem).HumanReadable())
	return b.String()
}

// SpikeReport returns the number of spikes emitted so far by each layer.
func (nt *Network) SpikeReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SpikeReport: %v, T: %d\n", nt.Nm, nt.T0)
	for _, ly := range nt.Layers {
		fmt.Fprintf(&b, "\t%14s:\t Spikes: %d\n", ly.Nm, ly.SpikeCount)
	}
	return b.String()
}

// TimerReport returns the amount of time spent in each function, and by each
// layer worker.
func (nt *Network) TimerReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TimerReport: %v, NLayers: %v\n", nt.Nm, len(nt.Layers))
	fmt.Fprintf(&b, "\tFunction Name\tTotal Secs\n")
	fnms := make([]string, 0, len(nt.FunTimes))
	for k := range nt.FunTimes {
		fnms = append(fnms, k)
	}
	sort.Strings(fnms)
	for _, fn := range fnms {
		fmt.Fprintf(&b, "\t%v \t%6.4g\n", fn, nt.FunTimes[fn].TotalSecs())
	}

	fmt.Fprintf(&b, "\n\tLayer\tTotal Secs\tPct\n")
	pcts := make([]float64, len(nt.Layers))
	tot := 0.0
	for li, ly := range nt.Layers {
		pcts[li] = ly.Time.TotalSecs()
		tot += pcts[li]
	}
	for li, ly := range nt.Layers {
		pct := 0.0
		if tot > 0 {
			pct = 100 * (pcts[li] / tot)
		}
		fmt.Fprintf(&b, "\t%v \t%6.4g\t%6.4g\n", ly.Nm, pcts[li], pct)
	}
	return b.String()
}

// TimerReset resets the function and per-layer timers
func (nt *Network) TimerReset() {
	for _, ft := range nt.FunTimes {
		ft.Reset()
	}
	for _, ly := range nt.Layers {
		ly.Time.Reset()
	}
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (nt *Network) FunTimerStart(fun string) {
	if nt.FunTimes == nil {
		nt.FunTimes = make(map[string]*timer.Time)
	}
	ft, ok := nt.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		nt.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (nt *Network) FunTimerStop(fun string) {
	ft := nt.FunTimes[fun]
	ft.Stop()
}
