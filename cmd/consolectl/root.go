package main

import (
	"log"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consolectl",
		Short: "Operational tools for the assignments console",
	}
	cmd.AddCommand(newSnapshotCmd())
	cmd.AddCommand(newDiffCmd())
	cmd.AddCommand(newCountersCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
