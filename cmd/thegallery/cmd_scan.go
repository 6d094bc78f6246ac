package thegallery

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/polylab/thegallery/internal/thegallery"
)

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&scanMediaDir, "media-dir", "d", "", "media library dir")
	scanCmd.Flags().StringVarP(&scanWorkDir, "work-dir", "w", "", "work dir")
}

var (
	scanMediaDir string
	scanWorkDir  string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the media library into the local metadata cache",
	Run: func(cmd *cobra.Command, args []string) {
		conf := map[string]any{"watch": false}
		if cmd.Flags().Changed("media-dir") {
			conf["media_dir"] = scanMediaDir
		}
		if cmd.Flags().Changed("work-dir") {
			conf["work_dir"] = scanWorkDir
		}

		m := thegallery.New()
		n, err := m.CommandScan(configPath, conf)
		if err != nil {
			log.Err(err).Msg("scan failed")
			return
		}
		fmt.Printf("scanned %d items\n", n)
	},
}
