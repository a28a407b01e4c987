// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/emer/snn/netcfg"
	"github.com/emer/snn/snn"
	"github.com/spf13/cobra"
)

// runResult is the JSON output of the run command.
type runResult struct {
	Network string  `json:"network"`
	Silent  string  `json:"silent"`
	NIn     int     `json:"n_in"`
	NOut    int     `json:"n_out"`
	Output  [][]int `json:"output"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [spikes.yaml]",
		Short: "Run a spike train through the network",
		Long: `Run reads a [neuron][time] spike matrix and prints the output spikes
of the last layer, one row per output neuron and one column per instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nt, err := loadNet(cmd)
			if err != nil {
				return err
			}
			if s, _ := cmd.Flags().GetString("silent"); s != "" {
				sm, err := snn.SilentModeFromString(s)
				if err != nil {
					return err
				}
				nt.Silent = sm
			}
			in, err := netcfg.LoadSpikes(args[0])
			if err != nil {
				return err
			}
			out, err := nt.Process(in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(w).Encode(runResult{
					Network: nt.Name(),
					Silent:  nt.Silent.String(),
					NIn:     nt.NIn(),
					NOut:    nt.NOut(),
					Output:  intSpikes(out),
				})
			}
			fmt.Fprint(w, snn.SpikesString(out))
			if timers, _ := cmd.Flags().GetBool("timers"); timers {
				fmt.Fprint(w, nt.TimerReport())
				fmt.Fprint(w, nt.SpikeReport())
			}
			return nil
		},
	}
	cmd.Flags().String("silent", "", "Silent instant mode: skip or forward (default from config)")
	cmd.Flags().Bool("timers", false, "Print layer timing and spike counts")
	return cmd
}

// intSpikes converts spikes for JSON, which would otherwise encode each
// []uint8 row as a base64 string.
func intSpikes(spikes [][]uint8) [][]int {
	is := make([][]int, len(spikes))
	for ni, row := range spikes {
		is[ni] = make([]int, len(row))
		for t, s := range row {
			is[ni][t] = int(s)
		}
	}
	return is
}
