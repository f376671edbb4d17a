// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Command rohcc is a small demonstration front-end for the rohc
// package: it compresses packets read from a file or an interactive
// shell and prints the resulting wire bytes.
package main

import (
	"fmt"
	"os"

	"github.com/oprsystem/rohc/cmd/rohcc/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rohcc:", err)
		os.Exit(1)
	}
}
