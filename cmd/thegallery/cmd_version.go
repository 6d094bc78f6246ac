package thegallery

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polylab/thegallery/pkg/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of thegallery",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("thegallery %s\n", version.String())
	},
}
