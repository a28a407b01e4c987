// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package netcfg loads spiking network descriptions and spike trains from
// YAML files and builds snn.Network values from them.
package netcfg

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/emer/snn/lif"
	"github.com/emer/snn/snn"
	"gopkg.in/yaml.v3"
)

// Config is the YAML description of a network.
type Config struct {

	// Name of the network.
	Name string `yaml:"name"`

	// Silent is the silent instant mode: "skip" (default) or "forward".
	Silent string `yaml:"silent,omitempty"`

	// ChanCap is the capacity of the channels between layers; default snn.DefaultChanCap.
	ChanCap *int `yaml:"chan_cap,omitempty"`

	// Inputs is the input width of the network; 0 infers it from the first layer.
	Inputs int `yaml:"inputs,omitempty"`

	// Weights is an optional weights file (as written by snn.Network.SaveWtsJSON)
	// whose matrices replace the inline ones of layers with the same name.
	// A relative path is relative to the config file.
	Weights string `yaml:"weights,omitempty"`

	// Layers in feed-forward order.
	Layers []LayerConfig `yaml:"layers"`

	dir string
}

// LayerConfig is the YAML description of one layer.
type LayerConfig struct {
	Name string `yaml:"name"`

	// N is the number of neurons when Neurons is not given; if both are
	// missing, it is the number of extra weight rows.
	N int `yaml:"n,omitempty"`

	// Neuron holds the parameters shared by all neurons of the layer.
	Neuron NeuronConfig `yaml:"neuron,omitempty"`

	// Neurons optionally overrides Neuron for each neuron in turn.
	Neurons []NeuronConfig `yaml:"neurons,omitempty"`

	// Extra weights, one row per neuron, one column per sending neuron.
	Extra [][]float32 `yaml:"extra"`

	// Intra weights, square; all zero if missing.
	Intra [][]float32 `yaml:"intra,omitempty"`
}

// NeuronConfig selects a neuron model and its parameters. Unset parameters
// fall back to the layer's Neuron, then to the model defaults.
type NeuronConfig struct {

	// Type is "lif" (default) or "thr".
	Type string `yaml:"type,omitempty"`

	Thr   *float32 `yaml:"thr,omitempty"`
	Rest  *float32 `yaml:"rest,omitempty"`
	Reset *float32 `yaml:"reset,omitempty"`
	Tau   *float32 `yaml:"tau,omitempty"`
}

// Load reads a network description from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Println(err)
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes a network description from YAML.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing network config: %w", err)
	}
	return cfg, nil
}

// Build builds the network described by the config.
func (cfg *Config) Build() (*snn.Network, error) {
	bd := snn.NewBuilder(cfg.Name)
	if cfg.Silent != "" {
		sm, err := snn.SilentModeFromString(cfg.Silent)
		if err != nil {
			return nil, err
		}
		bd.SetSilent(sm)
	}
	if cfg.ChanCap != nil {
		bd.ChanCap = *cfg.ChanCap
	}
	bd.SetInputs(cfg.Inputs)

	var nw *snn.NetWts
	if cfg.Weights != "" {
		path := cfg.Weights
		if !filepath.IsAbs(path) && cfg.dir != "" {
			path = filepath.Join(cfg.dir, path)
		}
		var err error
		nw, err = snn.OpenWtsJSON(path)
		if err != nil {
			return nil, err
		}
	}

	for li := range cfg.Layers {
		lc := &cfg.Layers[li]
		extra, intra := lc.Extra, lc.Intra
		if nw != nil {
			if lw := nw.LayerByName(lc.Name); lw != nil {
				extra, intra = lw.Extra, lw.Intra
			}
		}
		nrns, err := lc.neurons(len(extra))
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", li, lc.Name, err)
		}
		if intra == nil {
			intra = zeroWts(len(nrns))
		}
		bd.AddLayer(lc.Name, nrns, extra, intra)
	}
	return bd.Build()
}

// neurons makes the neurons of the layer, nExtra being the number of extra
// weight rows.
func (lc *LayerConfig) neurons(nExtra int) ([]snn.Neuron, error) {
	n := len(lc.Neurons)
	if n == 0 {
		n = lc.N
	}
	if n == 0 {
		n = nExtra
	}
	nrns := make([]snn.Neuron, n)
	for ni := range nrns {
		nc := lc.Neuron
		if ni < len(lc.Neurons) {
			nc = lc.Neurons[ni].over(&lc.Neuron)
		}
		nrn, err := nc.New()
		if err != nil {
			return nil, fmt.Errorf("neuron %d: %w", ni, err)
		}
		nrns[ni] = nrn
	}
	return nrns, nil
}

// over returns nc with unset fields taken from base.
func (nc NeuronConfig) over(base *NeuronConfig) NeuronConfig {
	if nc.Type == "" {
		nc.Type = base.Type
	}
	if nc.Thr == nil {
		nc.Thr = base.Thr
	}
	if nc.Rest == nil {
		nc.Rest = base.Rest
	}
	if nc.Reset == nil {
		nc.Reset = base.Reset
	}
	if nc.Tau == nil {
		nc.Tau = base.Tau
	}
	return nc
}

// New makes a neuron from the config.
func (nc *NeuronConfig) New() (snn.Neuron, error) {
	switch nc.Type {
	case "", "lif":
		lp := nc.LifParams()
		return lif.NewFromParams(&lp), nil
	case "thr":
		thr := float32(1)
		if nc.Thr != nil {
			thr = *nc.Thr
		}
		return &snn.ThrNeuron{Thr: thr}, nil
	}
	return nil, fmt.Errorf("unknown neuron type %q", nc.Type)
}

// LifParams returns the LIF params of the config, starting from the defaults.
func (nc *NeuronConfig) LifParams() lif.Params {
	lp := lif.Params{}
	lp.Defaults()
	if nc.Thr != nil {
		lp.Thr = *nc.Thr
	}
	if nc.Rest != nil {
		lp.Rest = *nc.Rest
	}
	if nc.Reset != nil {
		lp.Reset = *nc.Reset
	}
	if nc.Tau != nil {
		lp.Tau = *nc.Tau
	}
	lp.Update()
	return lp
}

func zeroWts(n int) [][]float32 {
	wts := make([][]float32, n)
	for i := range wts {
		wts[i] = make([]float32, n)
	}
	return wts
}

// LoadSpikes reads a [neuron][time] spike matrix from a YAML file holding a
// list of spike trains, e.g. [[1, 0, 1], [0, 0, 1]].
func LoadSpikes(path string) ([][]uint8, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Println(err)
		return nil, err
	}
	return ParseSpikes(data)
}

// ParseSpikes decodes a spike matrix from YAML.
func ParseSpikes(data []byte) ([][]uint8, error) {
	var spikes [][]uint8
	if err := yaml.Unmarshal(data, &spikes); err != nil {
		return nil, fmt.Errorf("%w: parsing spikes: %v", snn.ErrInput, err)
	}
	return spikes, nil
}
