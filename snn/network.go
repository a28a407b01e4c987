// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/emer/emergent/v2/timer"
)

// DefaultChanCap is the default capacity of the channels linking layer workers.
const DefaultChanCap = 16

// snn.Network is an ordered stack of layers, each feeding the next.
// The topology and weights never change after construction; processing
// mutates only neuron state, PrevSpikes and the network clock.
// A Network must not be processed by two overlapping calls: the second
// one fails with ErrBusy.
type Network struct {

	// overall name of network
	Nm string

	// layers in feed-forward order
	Layers []*Layer

	// map of name to layer
	LayMap map[string]*Layer

	// what to do with input instants in which no input neuron spikes
	Silent SilentMode

	// capacity of each channel between layer workers -- 0 = unbuffered
	ChanCap int

	// next instant on the network clock: each Process call continues from
	// where the previous one ended, so neurons always see time moving forward
	T0 int

	// timers for each major function
	FunTimes map[string]*timer.Time

	busy atomic.Bool
}

// NewNetwork returns a network over the given layers, checking that each
// layer's input width equals the previous layer's neuron count.
func NewNetwork(name string, layers []*Layer) (*Network, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: network %s has no layers", ErrInvariant, name)
	}
	nt := &Network{Nm: name, Layers: layers, ChanCap: DefaultChanCap}
	nt.FunTimes = make(map[string]*timer.Time)
	nt.LayMap = make(map[string]*Layer, len(layers))
	for li, ly := range layers {
		ly.Idx = li
		if li > 0 && ly.NIn != layers[li-1].NNeurons() {
			return nil, fmt.Errorf("%w: layer %s has %d inputs but previous layer %s has %d neurons", ErrInvariant, ly.Nm, ly.NIn, layers[li-1].Nm, layers[li-1].NNeurons())
		}
		if _, has := nt.LayMap[ly.Nm]; has {
			return nil, fmt.Errorf("%w: duplicate layer name %s in network %s", ErrInvariant, ly.Nm, name)
		}
		nt.LayMap[ly.Nm] = ly
	}
	return nt, nil
}

func (nt *Network) Name() string                   { return nt.Nm }
func (nt *Network) Label() string                  { return nt.Nm }
func (nt *Network) NLayers() int                   { return len(nt.Layers) }
func (nt *Network) Layer(idx int) *Layer           { return nt.Layers[idx] }
func (nt *Network) LayerByName(name string) *Layer { return nt.LayMap[name] }

// NIn returns the input width of the network: the number of extra weight
// columns of the first layer.
func (nt *Network) NIn() int { return nt.Layers[0].NIn }

// NOut returns the output width of the network: the neuron count of the last layer.
func (nt *Network) NOut() int { return nt.Layers[len(nt.Layers)-1].NNeurons() }

// LayerByNameTry returns a layer by name, with an error if it is not found.
func (nt *Network) LayerByNameTry(name string) (*Layer, error) {
	ly := nt.LayerByName(name)
	if ly == nil {
		err := fmt.Errorf("Layer named: %v not found in Network: %v", name, nt.Nm)
		log.Println(err)
		return nil, err
	}
	return ly, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Processing

// Process runs the given [neuron][time] input spikes through the network and
// returns the last layer's [neuron][time] output spikes, with the same number
// of instants as the input. All input trains must share one length, the number
// of trains must equal NIn, and every value must be 0 or 1; otherwise an
// ErrInput error is returned before any layer runs.
// Time continues from the previous call: instant t of spikes is processed as
// T0+t on the network clock.
func (nt *Network) Process(spikes [][]uint8) ([][]uint8, error) {
	evs, dur, err := EncodeSpikes(spikes, nt.NIn())
	if err != nil {
		return nil, err
	}
	if !nt.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer nt.busy.Store(false)
	t0 := nt.T0
	for i := range evs {
		evs[i].T += t0
	}
	outs, err := nt.runPipeline(evs)
	if err != nil {
		return nil, err
	}
	nt.T0 = t0 + dur
	for i := range outs {
		outs[i].T -= t0
	}
	return DecodeSpikes(outs, nt.NOut(), dur)
}

// ProcessEvents runs pre-encoded input events through the network and returns
// the output events of the last layer, in time order. Event timestamps are on
// the network clock: they must strictly increase and start at T0 or later.
// Events silenced by the SkipSilent mode have no corresponding output event.
func (nt *Network) ProcessEvents(evs []SpikeEvent) ([]SpikeEvent, error) {
	if !nt.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer nt.busy.Store(false)
	last := nt.T0 - 1
	for _, ev := range evs {
		if ev.T <= last {
			return nil, fmt.Errorf("%w: event t=%d does not follow t=%d", ErrInput, ev.T, last)
		}
		if len(ev.Spikes) != nt.NIn() {
			return nil, fmt.Errorf("%w: event t=%d has %d spikes, network input has %d neurons", ErrInput, ev.T, len(ev.Spikes), nt.NIn())
		}
		if err := CheckBinary(ev.Spikes); err != nil {
			return nil, fmt.Errorf("%w at t=%d", err, ev.T)
		}
		last = ev.T
	}
	outs, err := nt.runPipeline(evs)
	if err != nil {
		return nil, err
	}
	nt.T0 = last + 1
	return outs, nil
}

// runPipeline starts one worker per layer, linked by fresh channels, feeds
// evs into the first layer, collects everything the last layer emits, and
// waits for all workers to finish. Closing the entry channel after the last
// event is what shuts the pipeline down.
// The caller must hold the busy flag.
func (nt *Network) runPipeline(evs []SpikeEvent) ([]SpikeEvent, error) {
	if nt.ChanCap < 0 {
		return nil, fmt.Errorf("%w: network %s channel capacity %d must be >= 0", ErrInvariant, nt.Nm, nt.ChanCap)
	}
	nt.FunTimerStart("Process")
	defer nt.FunTimerStop("Process")

	var wg sync.WaitGroup
	errs := make([]error, len(nt.Layers))
	entry := make(chan SpikeEvent, nt.ChanCap)
	var in <-chan SpikeEvent = entry
	for li, ly := range nt.Layers {
		out := make(chan SpikeEvent, nt.ChanCap)
		wg.Add(1)
		go func(li int, ly *Layer, in <-chan SpikeEvent, out chan<- SpikeEvent) {
			defer wg.Done()
			errs[li] = ly.Run(in, out)
		}(li, ly, in, out)
		in = out
	}
	exit := in

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(entry)
		for _, ev := range evs {
			if nt.Silent == SkipSilent && ev.IsSilent() {
				continue
			}
			entry <- ev
		}
	}()

	var outs []SpikeEvent
	for ev := range exit {
		outs = append(outs, ev)
	}
	wg.Wait()

	for li, err := range errs {
		if err != nil {
			err = fmt.Errorf("network %s layer %d: %w", nt.Nm, li, err)
			log.Println(err)
			return nil, err
		}
	}
	return outs, nil
}
