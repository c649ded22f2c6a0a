package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	GroupID: "diagnose",
	Short:   "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cargotom-ls %s", Version)
		if Commit != "" {
			fmt.Printf(" (%s)", Commit)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
