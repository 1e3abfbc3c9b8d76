package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:          "skimmer",
		Short:        "Cached web research summaries",
		SilenceUsage: true,
	}

	root.AddCommand(serveCMD(), migrateCMD(), cleanupCMD(), queryCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
