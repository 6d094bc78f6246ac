// Package gallery assembles the data layer (persistent store, media index
// source, repository, thumbnail loader, library watcher) into one service
// with a Start/Stop lifecycle.
package gallery

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/polylab/thegallery/internal/gallerydb/mediaindex"
	"github.com/polylab/thegallery/internal/gallerydb/repository"
	"github.com/polylab/thegallery/internal/gallerydb/store"
	"github.com/polylab/thegallery/internal/imageloader"
	"github.com/polylab/thegallery/internal/model"
	"github.com/polylab/thegallery/internal/permission"
	"github.com/polylab/thegallery/internal/thegallery/conf"
)

type Service struct {
	conf *conf.ServerConfig

	store   *store.Store
	source  *mediaindex.FSSource
	repo    *repository.Repository
	loader  imageloader.Loader
	watcher *mediaindex.Watcher
}

func NewService(conf *conf.ServerConfig) *Service {
	return &Service{conf: conf}
}

// Start opens the store and wires the repository to the media library. With
// watching enabled, external library changes invalidate open media streams.
func (s *Service) Start() error {
	st, err := store.Open(s.conf.GetWorkDir())
	if err != nil {
		return err
	}
	s.store = st

	s.source = mediaindex.NewFSSource(s.conf.GetMediaDir())

	s.repo = repository.New(
		s.store,
		s.source,
		permission.NewFSChecker(s.conf.GetMediaDir()),
		repository.WithPageSize(s.conf.GetPageSize()),
	)

	loader, err := imageloader.NewCachingLoader(filepath.Join(s.conf.GetWorkDir(), "thumbs"))
	if err != nil {
		s.store.Close()
		return err
	}
	s.loader = loader

	if s.conf.GetWatch() {
		s.watcher = mediaindex.NewWatcher(s.conf.GetMediaDir())
		s.watcher.AddCallback(s.repo.Refresh)
		if err := s.watcher.Start(); err != nil {
			log.Warn().Err(err).Msg("library watcher unavailable, streams refresh on demand only")
			s.watcher = nil
		}
	}

	log.Info().
		Str("media_dir", s.conf.GetMediaDir()).
		Str("work_dir", s.conf.GetWorkDir()).
		Msg("gallery service started")
	return nil
}

func (s *Service) Stop() error {
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
	if s.store != nil {
		s.store.Close()
		s.store = nil
	}
	s.repo = nil
	return nil
}

// Repository returns the gallery data layer entry point.
func (s *Service) Repository() *repository.Repository {
	return s.repo
}

// Loader returns the thumbnail renderer.
func (s *Service) Loader() imageloader.Loader {
	return s.loader
}

// MediaDir returns the library root.
func (s *Service) MediaDir() string {
	return s.conf.GetMediaDir()
}

// Scan walks the whole library once and persists every snapshot into the
// media cache. Used by the scan command and usable while serving.
func (s *Service) Scan(ctx context.Context) (int, error) {
	scanned := 0
	pageSize := s.conf.GetPageSize()

	for page := 0; ; page++ {
		p, err := s.repo.LoadPage(ctx, model.Filter{}, page, pageSize)
		if err != nil {
			return scanned, err
		}
		scanned += len(p.Items)
		if !p.HasMore {
			break
		}
	}

	log.Info().Int("items", scanned).Time("at", time.Now()).Msg("library scan complete")
	return scanned, nil
}
