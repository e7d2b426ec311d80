package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("voltalert: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "voltalert",
		Short:         "Charging session monitor with a serialized alert queue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCmd(),
		newSimulateCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newPruneCmd(),
		newSessionsCmd(),
	)
	return root
}
