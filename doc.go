// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package snn is the overall repository for a feed-forward spiking neural network
engine implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is organized
into the following sub-packages:

* snn: the core engine. A Network is a chain of Layers, each running in its own
goroutine and linked to the next by a channel of SpikeEvents. Spike matrices
([neuron][time] of 0/1 values) are encoded into events, flowed through the
pipeline, and the last layer's events decoded back into a matrix. Builder
checks the shapes and ranges of all weights before a Network is made.

* lif: the leaky integrate-and-fire neuron model, the standard Neuron
implementation.

* netcfg: loads network descriptions and spike trains from YAML files.

* cmd/snnsim: command line tool that builds a network from a config and runs
spike trains through it.
*/
package snn
