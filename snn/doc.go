// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package snn simulates a feed-forward spiking neural network: an ordered stack
of layers whose neurons integrate weighted, time-stamped binary spikes and emit
binary spikes in turn.

A Network is assembled once with a Builder and then driven with Process, which
takes a [neuron][time] spike matrix and returns the last layer's
[neuron][time] output. Each call runs one goroutine per layer, connected by
channels of SpikeEvent values, one event per time instant. Closing the entry
channel is the only termination signal: each layer closes its own output when
its input runs dry, so shutdown cascades down the pipeline.

Within a layer, lateral (intra) weights are applied to the layer's own output
from the previous processed instant, never the current one, so the order in
which neurons are updated within an instant does not matter.

The neuron model is pluggable through the Neuron interface; package lif
provides the standard leaky integrate-and-fire model.
*/
package snn
