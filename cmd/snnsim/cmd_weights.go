// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWeightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Write the network weights as JSON",
		Long: `Weights writes the extra and intra weights of every layer, in the format
accepted by the weights key of a network config. A .gz output file is
gzip compressed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nt, err := loadNet(cmd)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				return nt.WriteWtsJSON(cmd.OutOrStdout())
			}
			if err := nt.SaveWtsJSON(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote weights of %s to %s\n", nt.Name(), out)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "Output file (.wts, .json, or .gz); default stdout")
	return cmd
}
