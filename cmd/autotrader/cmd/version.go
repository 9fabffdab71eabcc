package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the autotrader CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("autotrader version %s\n", version)
		fmt.Println("A stock trading simulator and paper-trading platform")
		fmt.Println("https://github.com/rustyeddy/autotrader")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
