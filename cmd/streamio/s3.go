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

	"github.com/chronicleprotocol/go-streamio/objstore"
)

func newS3Cmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "s3",
		Short: "Object storage commands",
	}
	cmd.AddCommand(newS3UploadCmd(opts), newS3ListCmd(opts))
	return cmd
}

func newS3UploadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE s3://BUCKET/KEY",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client(cmd).Upload(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("file upload error: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "file successfully uploaded to %s\n", args[1])
			return nil
		},
	}
}

func newS3ListCmd(opts *options) *cobra.Command {
	var (
		delimiter string
		dirs      bool
	)
	cmd := &cobra.Command{
		Use:   "list s3://BUCKET/PREFIX",
		Short: "List objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := objstore.ParseURL(args[0])
			if err != nil {
				return err
			}
			s, err := opts.client(cmd).Store(cmd.Context(), u.Scheme)
			if err != nil {
				return err
			}
			keys, err := s.List(cmd.Context(), u.Bucket, u.Key, delimiter, dirs)
			if err != nil {
				return fmt.Errorf("unable to list bucket content: %w", err)
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", "", "delimiter for directory listing")
	cmd.Flags().BoolVar(&dirs, "dirs", false, "show directories only")
	return cmd
}
