package thegallery

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/polylab/thegallery/internal/thegallery"
)

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringVarP(&serverAddr, "addr", "a", "", "server address")
	serverCmd.Flags().StringVarP(&serverMediaDir, "media-dir", "d", "", "media library dir")
	serverCmd.Flags().StringVarP(&serverWorkDir, "work-dir", "w", "", "work dir")
	serverCmd.Flags().IntVar(&serverPageSize, "page-size", 0, "media page size")
	serverCmd.Flags().BoolVar(&serverNoWatch, "no-watch", false, "disable media library watching")
}

var (
	serverAddr     string
	serverMediaDir string
	serverWorkDir  string
	serverPageSize int
	serverNoWatch  bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		m := thegallery.New()
		if err := m.CommandHTTPServer(configPath, serverConf(cmd)); err != nil {
			log.Err(err).Msg("failed to start server")
		}
	},
}

// serverConf maps the flags a user actually set onto config keys, so file
// and environment values survive unset flags.
func serverConf(cmd *cobra.Command) map[string]any {
	conf := map[string]any{}
	if cmd.Flags().Changed("addr") {
		conf["http_addr"] = serverAddr
	}
	if cmd.Flags().Changed("media-dir") {
		conf["media_dir"] = serverMediaDir
	}
	if cmd.Flags().Changed("work-dir") {
		conf["work_dir"] = serverWorkDir
	}
	if cmd.Flags().Changed("page-size") {
		conf["page_size"] = serverPageSize
	}
	if cmd.Flags().Changed("no-watch") {
		conf["watch"] = !serverNoWatch
	}
	return conf
}
