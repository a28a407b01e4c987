// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn_test

import (
	"errors"
	"math/rand"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emer/snn/lif"
	"github.com/emer/snn/snn"
)

// lifs returns neurons with the given (thr, rest, reset, tau) params each.
func lifs(pars ...[4]float32) []snn.Neuron {
	nrns := make([]snn.Neuron, len(pars))
	for i, p := range pars {
		nrns[i] = lif.New(p[0], p[1], p[2], p[3])
	}
	return nrns
}

var stdLif = [4]float32{0.3, 0.05, 0.1, 1.0}

// oneLayerNet is the 2-input, 3-neuron single layer network with identical LIF neurons.
func oneLayerNet(t *testing.T) *snn.Network {
	nt, err := snn.NewBuilder("OneLayer").
		AddLayer("Out", lifs(stdLif, stdLif, stdLif),
			[][]float32{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}},
			[][]float32{{0, -0.1, -0.15}, {-0.05, 0, -0.1}, {-0.15, -0.1, 0}}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return nt
}

func threeLayerNet(t *testing.T) *snn.Network {
	nt, err := snn.NewBuilder("ThreeLayer").
		AddLayer("Hidden1", lifs(stdLif, stdLif, stdLif),
			[][]float32{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}},
			[][]float32{{0, -0.1, -0.15}, {-0.05, 0, -0.1}, {-0.15, -0.1, 0}}).
		AddLayer("Hidden2", lifs(stdLif),
			[][]float32{{0.3, 0.2, 0.1}},
			[][]float32{{0}}).
		AddLayer("Output", lifs(stdLif, stdLif, stdLif, stdLif),
			[][]float32{{0.3}, {0.2}, {0.5}, {0.3}},
			[][]float32{{0, -0.1, -0.2, -0.3}, {-0.1, 0, -0.4, -0.2}, {-0.6, -0.2, 0, -0.9}, {-0.5, -0.3, -0.8, 0}}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return nt
}

func mixedNet(t *testing.T) *snn.Network {
	nt, err := snn.NewBuilder("Mixed").
		AddLayer("Hidden1", lifs([4]float32{0.5, 0.1, 0.2, 0.7}, stdLif),
			[][]float32{{0.1, 0.2}, {0.3, 0.4}},
			[][]float32{{0, -0.4}, {-0.1, 0}}).
		AddLayer("Hidden2", lifs([4]float32{0.2, 0.1, 0.15, 0.1}, [4]float32{0.3, 0.2, 0.05, 0.3}, [4]float32{0.4, 0.15, 0.1, 0.8}, [4]float32{0.05, 0.35, 0.01, 1.0}),
			[][]float32{{0.7, 0.2}, {0.3, 0.8}, {0.5, 0.6}, {0.3, 0.2}},
			[][]float32{{0, -0.2, -0.4, -0.9}, {-0.1, 0, -0.3, -0.2}, {-0.6, -0.2, 0, -0.9}, {-0.5, -0.3, -0.8, 0}}).
		AddLayer("Output", lifs(stdLif),
			[][]float32{{0.3, 0.3, 0.2, 0.7}},
			[][]float32{{0}}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return nt
}

// oneInputNet is oneLayerNet with a weak second input to the last neuron.
func oneInputNet(t *testing.T) *snn.Network {
	nt, err := snn.NewBuilder("OneInput").
		AddLayer("Out", lifs(stdLif, stdLif, stdLif),
			[][]float32{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.25}},
			[][]float32{{0, -0.1, -0.15}, {-0.05, 0, -0.1}, {-0.15, -0.1, 0}}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return nt
}

// fourInputNet is a single layer of 3 LIF neurons with distinct params over 4 inputs.
func fourInputNet(t *testing.T) *snn.Network {
	nt, err := snn.NewBuilder("FourInput").
		AddLayer("Out", lifs([4]float32{0.31, 0.01, 0.1, 0.8}, [4]float32{0.32, 0.02, 0.3, 0.9}, [4]float32{0.33, 0.03, 0.2, 1.0}),
			[][]float32{{0.1, 0.2, 0.3, 0.4}, {0.1, 0.4, 0.1, 0.2}, {0.5, 0.1, 0.7, 0.25}},
			[][]float32{{0, -0.6, -0.3}, {-0.5, 0, -0.15}, {-0.4, -0.05, 0}}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return nt
}

// squareNet is a single layer of 4 LIF neurons with distinct params over 4 inputs.
func squareNet(t *testing.T) *snn.Network {
	nt, err := snn.NewBuilder("Square").
		AddLayer("Out", lifs([4]float32{0.67, 0.01, 0.1, 0.8}, [4]float32{0.4, 0.02, 0.3, 0.9}, [4]float32{0.33, 0.03, 0.2, 1.0}, [4]float32{0.9, 0.05, 0.7, 0.5}),
			[][]float32{{0.3, 0.21, 0.36, 0.47}, {0.6, 0.45, 0.34, 0.21}, {0.1, 0.62, 0.72, 0.82}, {0.12, 0.23, 0.6, 0.8}},
			[][]float32{{0, -0.6, -0.3, -0.2}, {-0.5, 0, -0.15, -0.4}, {-0.4, -0.05, 0, -0.2}, {-0.1, -0.25, -0.15, 0}}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return nt
}

func zeroWtsNet(t *testing.T) *snn.Network {
	nt, err := snn.NewBuilder("ZeroWts").
		AddLayer("Out", lifs(stdLif, stdLif, stdLif),
			[][]float32{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
			[][]float32{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return nt
}

func process(t *testing.T, nt *snn.Network, in [][]uint8) [][]uint8 {
	t.Helper()
	out, err := nt.Process(in)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestProcessLIF(t *testing.T) {
	tests := []struct {
		name string
		net  func(t *testing.T) *snn.Network
		in   [][]uint8
		cor  [][]uint8
	}{
		{"one layer", oneLayerNet, [][]uint8{{1, 0, 1}, {0, 0, 1}}, [][]uint8{{0, 0, 0}, {1, 0, 1}, {1, 0, 1}}},
		{"one input instant", oneLayerNet, [][]uint8{{0}, {1}}, [][]uint8{{0}, {1}, {1}}},
		{"three layers", threeLayerNet, [][]uint8{{1, 0, 1}, {0, 0, 1}}, [][]uint8{{1, 0, 0}, {0, 0, 0}, {1, 0, 0}, {1, 0, 0}}},
		{"mixed neurons", mixedNet, [][]uint8{{1, 0, 1, 0}, {0, 0, 1, 1}}, [][]uint8{{1, 0, 1, 1}}},
		{"no instants", oneLayerNet, [][]uint8{{}, {}}, [][]uint8{{}, {}, {}}},
		{"one input weak weight", oneInputNet, [][]uint8{{0}, {1}}, [][]uint8{{0}, {1}, {0}}},
		{"four inputs mixed neurons", fourInputNet,
			[][]uint8{{1, 1, 0}, {0, 1, 0}, {0, 1, 1}, {0, 0, 1}},
			[][]uint8{{0, 1, 0}, {0, 1, 0}, {1, 1, 1}}},
		{"nine instants", squareNet,
			[][]uint8{{1, 1, 0, 1, 0, 1, 1, 1, 1}, {0, 1, 0, 0, 1, 0, 0, 0, 0}, {0, 1, 1, 0, 1, 0, 0, 0, 0}, {0, 0, 1, 0, 1, 0, 0, 0, 0}},
			[][]uint8{{0, 0, 0, 0, 1, 0, 0, 0, 0}, {1, 1, 1, 0, 1, 0, 1, 1, 1}, {0, 1, 1, 0, 1, 0, 0, 0, 0}, {0, 0, 1, 0, 1, 0, 0, 0, 0}}},
		{"zero weights", zeroWtsNet,
			[][]uint8{{1, 1, 0}, {0, 1, 0}, {0, 1, 1}, {0, 0, 1}},
			[][]uint8{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}},
	}
	for _, tt := range tests {
		out := process(t, tt.net(t), tt.in)
		if !reflect.DeepEqual(out, tt.cor) {
			t.Errorf("%s: output:\n%sexpected:\n%s", tt.name, snn.SpikesString(out), snn.SpikesString(tt.cor))
		}
	}
}

func TestProcessNeuronOrderIndependent(t *testing.T) {
	// same layer with neurons and weights listed in reverse order
	nt, err := snn.NewBuilder("Rev").
		AddLayer("Out", lifs(stdLif, stdLif, stdLif),
			[][]float32{{0.5, 0.6}, {0.3, 0.4}, {0.1, 0.2}},
			[][]float32{{0, -0.1, -0.15}, {-0.1, 0, -0.05}, {-0.15, -0.1, 0}}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	out := process(t, nt, [][]uint8{{1, 0, 1}, {0, 0, 1}})
	cor := [][]uint8{{1, 0, 1}, {1, 0, 1}, {0, 0, 0}}
	if !reflect.DeepEqual(out, cor) {
		t.Errorf("output: %v, expected: %v", out, cor)
	}
}

func TestProcessSilentModes(t *testing.T) {
	build := func(sm snn.SilentMode) *snn.Network {
		nt, err := snn.NewBuilder("Silent").SetSilent(sm).
			AddLayer("Out", snn.NewThrNeurons(2, 0.5),
				[][]float32{{1}, {0.6}},
				[][]float32{{0, 0}, {-0.5, 0}}).
			Build()
		if err != nil {
			t.Fatal(err)
		}
		return nt
	}
	in := [][]uint8{{1, 0, 1}}

	// skipped: the t=0 spike of neuron 0 still inhibits neuron 1 at t=2
	out := process(t, build(snn.SkipSilent), in)
	if cor := [][]uint8{{1, 0, 1}, {1, 0, 0}}; !reflect.DeepEqual(out, cor) {
		t.Errorf("SkipSilent output: %v, expected: %v", out, cor)
	}
	// forwarded: the silent t=1 output clears the lateral inhibition
	out = process(t, build(snn.ForwardSilent), in)
	if cor := [][]uint8{{1, 0, 1}, {1, 0, 1}}; !reflect.DeepEqual(out, cor) {
		t.Errorf("ForwardSilent output: %v, expected: %v", out, cor)
	}

	// the concrete single layer case does not depend on the mode
	nt := oneLayerNet(t)
	nt.Silent = snn.ForwardSilent
	out = process(t, nt, [][]uint8{{1, 0, 1}, {0, 0, 1}})
	if cor := [][]uint8{{0, 0, 0}, {1, 0, 1}, {1, 0, 1}}; !reflect.DeepEqual(out, cor) {
		t.Errorf("ForwardSilent one layer output: %v, expected: %v", out, cor)
	}
}

func TestSilentModeFromString(t *testing.T) {
	for _, s := range []string{"skip", "SkipSilent", "skipsilent"} {
		if sm, err := snn.SilentModeFromString(s); err != nil || sm != snn.SkipSilent {
			t.Errorf("%s: %v, %v", s, sm, err)
		}
	}
	if sm, err := snn.SilentModeFromString("forward"); err != nil || sm != snn.ForwardSilent {
		t.Errorf("forward: %v, %v", sm, err)
	}
	if _, err := snn.SilentModeFromString("sometimes"); err == nil {
		t.Errorf("expected error for unknown mode")
	}
}

func randSpikes(rnd *rand.Rand, nn, dur int) [][]uint8 {
	spikes := make([][]uint8, nn)
	for ni := range spikes {
		spikes[ni] = make([]uint8, dur)
		for t := range spikes[ni] {
			spikes[ni][t] = uint8(rnd.Intn(2))
		}
	}
	return spikes
}

func TestProcessDeterministic(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	in := randSpikes(rnd, 2, 50)
	for _, sm := range []snn.SilentMode{snn.SkipSilent, snn.ForwardSilent} {
		nt1 := threeLayerNet(t)
		nt1.Silent = sm
		nt2 := threeLayerNet(t)
		nt2.Silent = sm
		nt2.ChanCap = 0
		out1 := process(t, nt1, in)
		out2 := process(t, nt2, in)
		if !reflect.DeepEqual(out1, out2) {
			t.Errorf("%v: fresh networks gave different outputs:\n%s\n%s", sm, snn.SpikesString(out1), snn.SpikesString(out2))
		}
	}
}

func TestProcessShapeAndZeros(t *testing.T) {
	nets := []func(t *testing.T) *snn.Network{oneLayerNet, threeLayerNet, mixedNet}
	for ni, mk := range nets {
		for _, sm := range []snn.SilentMode{snn.SkipSilent, snn.ForwardSilent} {
			if ni == 2 && sm == snn.ForwardSilent {
				continue // has a neuron with Rest > Thr, which fires at rest
			}
			nt := mk(t)
			nt.Silent = sm
			in := make([][]uint8, nt.NIn())
			for i := range in {
				in[i] = make([]uint8, 7)
			}
			out := process(t, nt, in)
			if len(out) != nt.NOut() {
				t.Fatalf("net %d: output width %d, expected %d", ni, len(out), nt.NOut())
			}
			for oi := range out {
				if len(out[oi]) != 7 {
					t.Errorf("net %d: output length %d, expected 7", ni, len(out[oi]))
				}
				for _, s := range out[oi] {
					if s != 0 {
						t.Errorf("net %d %v: all-zero input gave spikes: %v", ni, sm, out)
					}
				}
			}
		}
	}
}

// identityNet returns nLay layers of n threshold neurons, each passing its input straight through.
func identityNet(t *testing.T, nLay, n int) *snn.Network {
	bd := snn.NewBuilder("Identity")
	for li := 0; li < nLay; li++ {
		extra := make([][]float32, n)
		intra := make([][]float32, n)
		for i := range extra {
			extra[i] = make([]float32, n)
			extra[i][i] = 1
			intra[i] = make([]float32, n)
		}
		bd.AddLayer("", snn.NewThrNeurons(n, 1), extra, intra)
	}
	nt, err := bd.Build()
	if err != nil {
		t.Fatal(err)
	}
	return nt
}

func TestProcessIdentity(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	in := randSpikes(rnd, 5, 40)
	for _, sm := range []snn.SilentMode{snn.SkipSilent, snn.ForwardSilent} {
		nt := identityNet(t, 1, 5)
		nt.Silent = sm
		if out := process(t, nt, in); !reflect.DeepEqual(out, in) {
			t.Errorf("%v: identity layer changed input:\n%s\n%s", sm, snn.SpikesString(in), snn.SpikesString(out))
		}
	}
}

func TestProcessTerminates(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	in := randSpikes(rnd, 4, 500)
	for _, cc := range []int{0, 1, snn.DefaultChanCap} {
		nt := identityNet(t, 12, 4)
		nt.ChanCap = cc
		nt.Silent = snn.ForwardSilent
		done := make(chan [][]uint8)
		go func() {
			out, _ := nt.Process(in)
			done <- out
		}()
		select {
		case out := <-done:
			if !reflect.DeepEqual(out, in) {
				t.Errorf("cap %d: 12 identity layers changed input", cc)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("cap %d: Process did not return", cc)
		}
	}
}

func TestProcessInputErrors(t *testing.T) {
	tests := []struct {
		name string
		in   [][]uint8
	}{
		{"spike greater than one", [][]uint8{{0, 50}, {0, 1}}},
		{"too few trains", [][]uint8{{0, 1}}},
		{"too many trains", [][]uint8{{0, 1}, {0, 1}, {1, 1}}},
		{"ragged", [][]uint8{{0, 1, 1}, {0, 1}}},
	}
	for _, tt := range tests {
		nt := oneLayerNet(t)
		out, err := nt.Process(tt.in)
		if out != nil || !errors.Is(err, snn.ErrInput) {
			t.Errorf("%s: expected input error, got: %v, %v", tt.name, out, err)
		}
		if nt.Layer(0).LastT != -1 || nt.T0 != 0 {
			t.Errorf("%s: layers must not run on invalid input", tt.name)
		}
	}
}

func TestProcessContinuesTime(t *testing.T) {
	nt := oneLayerNet(t)
	in := [][]uint8{{1, 0, 1}, {0, 0, 1}}
	process(t, nt, in)
	if nt.T0 != 3 {
		t.Errorf("T0: %d, expected 3", nt.T0)
	}
	out := process(t, nt, in)
	if len(out) != 3 || len(out[0]) != 3 {
		t.Errorf("second call output shape: %v", out)
	}
	if nt.T0 != 6 || nt.Layer(0).LastT != 5 {
		t.Errorf("T0: %d, LastT: %d, expected 6, 5", nt.T0, nt.Layer(0).LastT)
	}
}

func TestProcessEvents(t *testing.T) {
	nt := oneLayerNet(t)
	evs := []snn.SpikeEvent{{T: 0, Spikes: []uint8{1, 0}}, {T: 1, Spikes: []uint8{0, 0}}, {T: 2, Spikes: []uint8{1, 1}}}
	outs, err := nt.ProcessEvents(evs)
	if err != nil {
		t.Fatal(err)
	}
	cor := []snn.SpikeEvent{{T: 0, Spikes: []uint8{0, 1, 1}}, {T: 2, Spikes: []uint8{0, 1, 1}}}
	if !reflect.DeepEqual(outs, cor) {
		t.Errorf("outs: %v, expected: %v", outs, cor)
	}
	if _, err := nt.ProcessEvents([]snn.SpikeEvent{{T: 2, Spikes: []uint8{1, 1}}}); !errors.Is(err, snn.ErrInput) {
		t.Errorf("event before T0 should be an input error, got: %v", err)
	}
	if _, err := nt.ProcessEvents([]snn.SpikeEvent{{T: 5, Spikes: []uint8{1}}}); !errors.Is(err, snn.ErrInput) {
		t.Errorf("narrow event should be an input error, got: %v", err)
	}
}

// blockNeuron blocks in VmFmInput until released.
type blockNeuron struct {
	started chan struct{}
	release chan struct{}
}

func (bn *blockNeuron) VmFmInput(t int, wsum float32) (float32, bool) {
	bn.started <- struct{}{}
	<-bn.release
	return wsum, false
}

func TestProcessBusy(t *testing.T) {
	bn := &blockNeuron{started: make(chan struct{}), release: make(chan struct{})}
	nt, err := snn.NewBuilder("Busy").AddLayer("A", []snn.Neuron{bn}, [][]float32{{1}}, [][]float32{{0}}).Build()
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error)
	go func() {
		_, err := nt.Process([][]uint8{{1}})
		done <- err
	}()
	<-bn.started
	if _, err := nt.Process([][]uint8{{1}}); !errors.Is(err, snn.ErrBusy) {
		t.Errorf("overlapping Process: expected ErrBusy, got: %v", err)
	}
	close(bn.release)
	if err := <-done; err != nil {
		t.Errorf("first Process: %v", err)
	}
}

func TestProcessConcurrentCallers(t *testing.T) {
	nt := identityNet(t, 3, 2)
	nt.Silent = snn.ForwardSilent
	in := [][]uint8{{1, 0, 1, 1}, {0, 1, 1, 0}}
	var nok atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				out, err := nt.Process(in)
				if err != nil {
					if !errors.Is(err, snn.ErrBusy) {
						t.Errorf("overlapping Process: expected ErrBusy, got: %v", err)
					}
					continue
				}
				if !reflect.DeepEqual(out, in) {
					t.Errorf("identity output changed: %v", out)
				}
				nok.Add(1)
			}
		}()
	}
	wg.Wait()
	n := int(nok.Load())
	if n == 0 {
		t.Fatal("no Process call succeeded")
	}
	if nt.T0 != 4*n {
		t.Errorf("T0: %d, expected %d after %d calls", nt.T0, 4*n, n)
	}
	for li := 0; li < nt.NLayers(); li++ {
		if lt := nt.Layer(li).LastT; lt != nt.T0-1 {
			t.Errorf("layer %d LastT: %d, expected %d", li, lt, nt.T0-1)
		}
	}
}
