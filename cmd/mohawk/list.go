package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cyanworlds/mohawk"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <path>",
		Short: "List every type tag and resource in a Mohawk archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.OutOrStdout(), args[0])
		},
	}
}

func runList(w io.Writer, path string) error {
	m, err := mohawk.Open(path)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer m.Close()

	for _, typeID := range m.Types() {
		if err := listType(w, m, typeID); err != nil {
			return fmt.Errorf("list: %w", err)
		}
	}
	return nil
}

func listType(w io.Writer, m *mohawk.Mohawk, typeID mohawk.TypeID) error {
	fmt.Fprintln(w, typeID.String())
	fmt.Fprintln(w, "   id      name     size flag unknown")

	resources, _ := m.Resources(typeID)
	for _, res := range resources {
		if len(res.Name) > 9 {
			return fmt.Errorf("resource %d in type %s: %w", res.ID, typeID, mohawk.ErrNameTooLong)
		}
		fmt.Fprintf(w, "%5d %-9s %8d   %02X    %04X\n", res.ID, res.Name, res.File.Size, res.File.Flag, res.File.Unknown)
	}
	return nil
}
