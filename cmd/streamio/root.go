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
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/chronicleprotocol/go-streamio/config"
	"github.com/chronicleprotocol/go-streamio/errutil"
	"github.com/chronicleprotocol/go-streamio/streamio"
	"github.com/chronicleprotocol/go-streamio/transport"
)

type options struct {
	configPath string
	verbose    bool
	download   bool
	outfile    string
	cacheDir   string
	cacheForce bool
	cacheFile  string
	stats      bool
	retries    int

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "streamio [flags] LOCATION",
		Short: "Read local or remote files with any compression",
		Long: `streamio reads files from local paths or http(s), ftp, s3 and gs locations.
Compressed content is decoded based on the file name suffix.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return opts.run(cmd, args[0])
		},
	}
	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "HCL configuration file")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	lf := cmd.Flags()
	lf.BoolVarP(&opts.download, "download", "d", false, "download the file to the current directory")
	lf.StringVarP(&opts.outfile, "outfile", "o", "", "output file path")
	lf.StringVar(&opts.cacheDir, "cache-dir", "", "cache reading to the given directory, overrides the configuration")
	lf.BoolVar(&opts.cacheForce, "cache-force", false, "refresh the cache entry if it already exists")
	lf.StringVar(&opts.cacheFile, "cache-file", "", "cache entry file name")
	lf.BoolVarP(&opts.stats, "stats", "s", false, "read through the file and only print line and character counts")
	lf.IntVar(&opts.retries, "retries", -1, "download retries, overrides the configuration")
	cmd.AddCommand(newDigestCmd(opts), newS3Cmd(opts))
	return cmd
}

func (o *options) load() error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	if o.configPath == "" {
		o.cfg = &config.Config{}
		return nil
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

func (o *options) client(cmd *cobra.Command) *streamio.Client {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return streamio.New(append(o.cfg.ClientOptions(), streamio.WithLogger(logger))...)
}

func (o *options) run(cmd *cobra.Command, location string) error {
	ctx := cmd.Context()
	c := o.client(cmd)
	out := cmd.OutOrStdout()

	if o.download {
		path := o.outfile
		if path == "" {
			path = transport.Parse(location).Basename()
		}
		if path == "" {
			path = "output.txt"
		}
		retries := o.cfg.DownloadRetries()
		if o.retries >= 0 {
			retries = o.retries
		}
		if err := c.DownloadWithRetry(ctx, location, path, retries); err != nil {
			return fmt.Errorf("file download error: %w", err)
		}
		fmt.Fprintf(out, "file successfully downloaded to %s\n", path)
		return nil
	}

	cacheDir := o.cacheDir
	if cacheDir == "" {
		cacheDir = o.cfg.CacheDir()
	}
	var (
		r   io.ReadCloser
		err error
	)
	if cacheDir != "" {
		r, err = c.OpenCached(ctx, location, cacheDir,
			streamio.WithCacheName(o.cacheFile),
			streamio.WithCacheForce(o.cacheForce),
		)
	} else {
		r, err = c.Open(ctx, location)
	}
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", location, err)
	}
	defer r.Close()

	if o.outfile == "" || o.stats {
		return copyLines(r, out, out, o.stats)
	}
	w, err := c.Create(o.outfile)
	if err != nil {
		return err
	}
	return errutil.Append(copyLines(r, w, out, false), w.Close())
}

// copyLines copies lines from r to w. In stats mode, nothing is copied
// and the line and character counts are printed to out instead.
func copyLines(r io.Reader, w, out io.Writer, stats bool) error {
	var lines, chars int
	bw := bufio.NewWriter(w)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if !stats {
				if _, err := bw.WriteString(line); err != nil {
					return err
				}
			}
			lines++
			chars += utf8.RuneCountInString(trimEOL(line))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("cannot read line: %w", err)
		}
	}
	if stats {
		fmt.Fprintf(out, "lines: \t %d\n", lines)
		fmt.Fprintf(out, "chars: \t %d\n", chars)
		return nil
	}
	return bw.Flush()
}

func trimEOL(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
