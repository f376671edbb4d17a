// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var compressInFile string

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Compress a single hex-encoded IP packet",
	Long: `compress reads one hex-encoded IP packet (from --in, or stdin if
omitted), runs it through a freshly configured Compressor, and prints
the resulting ROHC packet as hex on stdout.`,
	RunE: runCompress,
}

func init() {
	compressCmd.Flags().StringVar(&compressInFile, "in", "", "file containing one hex-encoded packet (default: stdin)")
}

func runCompress(cmd *cobra.Command, args []string) error {
	raw, err := readHexInput(compressInFile)
	if err != nil {
		return err
	}

	c, err := buildCompressor()
	if err != nil {
		return err
	}
	if srv := maybeServeMetrics(c); srv != nil {
		defer srv.Close()
	}

	out := make([]byte, 2048)
	result, err := c.Compress(time.Now(), raw, out)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out[:result.N]))
	return nil
}

func readHexInput(path string) ([]byte, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return hex.DecodeString(strings.TrimSpace(string(data)))
}
