package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/dumpling"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dumpling",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dumpling version %s\n", strings.TrimSpace(dumpling.Version))
		},
	}
}
