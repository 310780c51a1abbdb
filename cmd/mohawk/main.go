// Command mohawk lists and extracts resources from Mohawk archive files (the container format used
// by Myst and its siblings). It is a thin front end over the mohawk and pict packages: argument
// parsing and output formatting only, no archive-parsing logic of its own.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/cyanworlds/mohawk"
	"github.com/cyanworlds/mohawk/pict"
)

func main() {
	mohawk.Logger = log.New(os.Stderr, "mohawk: ", 0)
	pict.Logger = log.New(os.Stderr, "pict: ", 0)

	root := &cobra.Command{
		Use:           "mohawk",
		Short:         "Inspect and extract resources from Mohawk archive files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newListCmd(), newExtractCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
