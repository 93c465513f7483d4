//
// Copyright (C) 2013 Wolfgang Resch
//
// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the license was not distributed with this file, you
// can obtain one at https://opensource.org/licenses/MIT.
//

package main

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "DEV"

var rootCmd = &cobra.Command{
	Use:           "gosr",
	Short:         "Tools for NGS data processing",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// diagnostics go to stderr, data output stays clean
	logrus.SetOutput(os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

// openOutput opens the data output. "-" or the empty string is stdout;
// a path ending in ".gz" is gzip-compressed.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		zw := gzip.NewWriter(f)
		return zw, func() error {
			if err := zw.Close(); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		}, nil
	}
	return f, f.Close, nil
}

// checkInfile mirrors the convention of taking "-" for stdin: any other
// name must be an existing file.
func checkInfile(path string) error {
	if path == "-" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return nil
}
