// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"

	"github.com/emer/etable/v2/etensor"
)

// SpikesFromTensor converts a 2D [neuron][time] tensor into a spike matrix.
// Values other than 0 or 1 are rejected.
func SpikesFromTensor(tsr etensor.Tensor) ([][]uint8, error) {
	if tsr.NumDims() != 2 {
		return nil, fmt.Errorf("%w: spike tensor must be 2D [neuron][time], has %d dims", ErrInput, tsr.NumDims())
	}
	nn := tsr.Dim(0)
	dur := tsr.Dim(1)
	spikes := make([][]uint8, nn)
	for ni := range spikes {
		spikes[ni] = make([]uint8, dur)
		for t := 0; t < dur; t++ {
			v := tsr.FloatVal([]int{ni, t})
			switch v {
			case 0:
			case 1:
				spikes[ni][t] = 1
			default:
				return nil, fmt.Errorf("%w: spike value %g for neuron %d at t=%d must be 0 or 1", ErrInput, v, ni, t)
			}
		}
	}
	return spikes, nil
}

// SpikesToTensor converts a [neuron][time] spike matrix into an Int tensor
// with dimension names "Neuron", "Time".
func SpikesToTensor(spikes [][]uint8) *etensor.Int {
	dur := 0
	if len(spikes) > 0 {
		dur = len(spikes[0])
	}
	tsr := etensor.NewInt([]int{len(spikes), dur}, nil, []string{"Neuron", "Time"})
	for ni, trn := range spikes {
		for t, s := range trn {
			tsr.Set([]int{ni, t}, int(s))
		}
	}
	return tsr
}

// ProcessTensor is Process for spikes held in a 2D [neuron][time] tensor.
func (nt *Network) ProcessTensor(tsr etensor.Tensor) (*etensor.Int, error) {
	spikes, err := SpikesFromTensor(tsr)
	if err != nil {
		return nil, err
	}
	out, err := nt.Process(spikes)
	if err != nil {
		return nil, err
	}
	return SpikesToTensor(out), nil
}
