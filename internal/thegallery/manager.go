// Package thegallery ties configuration, the gallery data layer and the HTTP
// surface together behind the command-line entry points.
package thegallery

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/polylab/thegallery/internal/thegallery/conf"
	"github.com/polylab/thegallery/internal/thegallery/gallery"
	"github.com/polylab/thegallery/internal/thegallery/http"
	"github.com/polylab/thegallery/pkg/config"
)

type Manager struct {
	sc  *conf.ServerConfig
	scm *config.Manager

	gallery *gallery.Service
	http    *http.Service
}

func New() *Manager {
	return &Manager{}
}

func (m *Manager) load(configPath string, cmdConf map[string]any) error {
	var err error
	m.sc, m.scm, err = conf.LoadServerConfig(configPath, cmdConf)
	return err
}

// CommandHTTPServer runs the gallery API server until interrupted.
func (m *Manager) CommandHTTPServer(configPath string, cmdConf map[string]any) error {

	if err := m.load(configPath, cmdConf); err != nil {
		return err
	}

	m.gallery = gallery.NewService(m.sc)
	if err := m.gallery.Start(); err != nil {
		return err
	}
	defer m.gallery.Stop()

	m.http = http.NewService(m.sc, m.gallery)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		m.http.Stop()
	}()

	return m.http.ListenAndServe()
}

// CommandScan walks the media library once and fills the local metadata
// cache, so listings stay usable while the library is unreachable.
func (m *Manager) CommandScan(configPath string, cmdConf map[string]any) (int, error) {

	if err := m.load(configPath, cmdConf); err != nil {
		return 0, err
	}

	m.gallery = gallery.NewService(m.sc)
	if err := m.gallery.Start(); err != nil {
		return 0, err
	}
	defer m.gallery.Stop()

	return m.gallery.Scan(context.Background())
}
