package conf

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/polylab/thegallery/pkg/config"
)

const (
	AppName          = "thegallery"
	ServerConfigName = "thegallery-server"
	EnvPrefix        = "THEGALLERY"
	EnvConfigDir     = "THEGALLERY_DIR"
)

// LoadServerConfig loads the server configuration from file, environment and
// command-line overrides, in increasing precedence.
func LoadServerConfig(configPath string, cmdConf map[string]any) (*ServerConfig, *config.Manager, error) {

	if configPath == "" {
		configPath = os.Getenv(EnvConfigDir)
	}

	scm, err := config.New(AppName, configPath, ServerConfigName, EnvPrefix, false)
	if err != nil {
		log.Error().Err(err).Msg("load server config failed")
		return nil, nil, err
	}

	conf := &ServerConfig{}
	config.SetDefaults(scm.Viper, conf, ServerDefaults)

	for key, value := range cmdConf {
		scm.SetConfig(key, value)
	}

	if err := scm.Load(conf); err != nil {
		log.Error().Err(err).Msg("load server config failed")
		return nil, nil, err
	}

	b, _ := json.Marshal(conf)
	log.Info().Msgf("server config: %s", string(b))

	return conf, scm, nil
}
