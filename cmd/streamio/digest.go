// Copyright (C) 2021-2025 Chronicle Labs, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chronicleprotocol/go-streamio/streamio"
)

func newDigestCmd(opts *options) *cobra.Command {
	var alg string
	cmd := &cobra.Command{
		Use:   "digest LOCATION",
		Short: "Print the digest of the raw file content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := streamio.ParseAlgorithm(alg)
			if err != nil {
				return err
			}
			sum, err := opts.client(cmd).Digest(cmd.Context(), args[0], a)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	cmd.Flags().StringVarP(&alg, "algorithm", "a", string(streamio.SHA256), "digest algorithm: sha256 or keccak256")
	return cmd
}
