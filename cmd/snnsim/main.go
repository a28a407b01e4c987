// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command snnsim builds a spiking network from a YAML description and runs
// spike trains through it.
package main

import (
	"fmt"
	"os"

	"github.com/emer/snn/netcfg"
	"github.com/emer/snn/snn"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "snnsim",
		Short: "Spiking neural network simulator",
		Long: `snnsim runs spike trains through a feed-forward network of spiking
layers, each layer running concurrently in its own goroutine.

Networks are described in YAML (see netcfg), spike trains are YAML lists
with one row of 0/1 values per input neuron.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringP("net", "n", "", "Network config file (YAML)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newSizeCmd(),
		newWeightsCmd(),
	)
	return rootCmd
}

// loadNet builds the network named by the --net flag.
func loadNet(cmd *cobra.Command) (*snn.Network, error) {
	path, _ := cmd.Flags().GetString("net")
	if path == "" {
		return nil, fmt.Errorf("--net is required")
	}
	cfg, err := netcfg.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}
