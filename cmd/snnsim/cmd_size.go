// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// layerSize is the JSON output of the size command, per layer.
type layerSize struct {
	Name    string `json:"name"`
	Neurons int    `json:"neurons"`
	Inputs  int    `json:"inputs"`
	Wts     int    `json:"wts"`
}

func newSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Report the layer sizes and weight memory of the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nt, err := loadNet(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				sizes := make([]layerSize, nt.NLayers())
				for li, ly := range nt.Layers {
					nn := ly.NNeurons()
					sizes[li] = layerSize{Name: ly.Name(), Neurons: nn, Inputs: ly.NIn, Wts: nn*ly.NIn + nn*nn}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(sizes)
			}
			fmt.Fprint(cmd.OutOrStdout(), nt.SizeReport())
			return nil
		},
	}
}
