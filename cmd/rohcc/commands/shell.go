// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/oprsystem/rohc"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactively compress one hex packet per line",
	Long: `shell opens a line-editing prompt (history, ^D to exit); each line
of hex-encoded input is compressed against one long-lived Compressor,
so repeated flows exercise the FO/SO state machine the way a real
session would.`,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	c, err := buildCompressor()
	if err != nil {
		return err
	}
	if srv := maybeServeMetrics(c); srv != nil {
		defer srv.Close()
	}

	sessionID := xid.New().String()
	c.SetTracesCB(func(format string, a ...interface{}) {
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] "+format+"\n", append([]interface{}{sessionID}, a...)...)
	})

	fmt.Fprintln(cmd.OutOrStdout(), "rohcc shell -- one hex packet per line, ^D to exit")

	input := liner.NewLiner()
	defer input.Close()
	input.SetCtrlCAborts(true)

	out := make([]byte, 2048)
	for {
		line, err := input.Prompt("rohcc> ")
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		input.AppendHistory(line)

		if line == "stats" {
			printStats(cmd, c)
			continue
		}

		raw, err := hex.DecodeString(line)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "bad hex: %v\n", err)
			continue
		}

		result, err := c.Compress(time.Now(), raw, out)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "compress failed: %v\n", err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out[:result.N]))
	}

	return nil
}

func printStats(cmd *cobra.Command, c *rohc.Compressor) {
	s := c.GetGeneralInfo()
	fmt.Fprintf(cmd.OutOrStdout(), "packets=%d contexts_used=%d created=%d evicted=%d failed=%d\n",
		s.PacketsCompressed, c.NumContextsUsed(), s.ContextsCreated, s.ContextsEvicted, s.CompressionFailed)
}
