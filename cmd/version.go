/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the AgentWing version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("agentwing %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
