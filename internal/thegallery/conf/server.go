package conf

import (
	"github.com/polylab/thegallery/pkg/util"
)

const (
	DefaultHTTPAddr         = "127.0.0.1:5040"
	DefaultPageSize         = 60
	DefaultPrefetchDistance = 20
)

type ServerConfig struct {
	MediaDir         string `mapstructure:"media_dir"`
	WorkDir          string `mapstructure:"work_dir"`
	HTTPAddr         string `mapstructure:"http_addr"`
	PageSize         int    `mapstructure:"page_size"`
	PrefetchDistance int    `mapstructure:"prefetch_distance"`
	Watch            bool   `mapstructure:"watch"`
}

var ServerDefaults = map[string]any{
	"http_addr":         DefaultHTTPAddr,
	"page_size":         DefaultPageSize,
	"prefetch_distance": DefaultPrefetchDistance,
	"watch":             true,
}

func (c *ServerConfig) GetMediaDir() string {
	if c.MediaDir == "" {
		c.MediaDir = util.DefaultMediaDir()
	}
	return c.MediaDir
}

func (c *ServerConfig) GetWorkDir() string {
	if c.WorkDir == "" {
		c.WorkDir = util.DefaultWorkDir()
	}
	return c.WorkDir
}

func (c *ServerConfig) GetHTTPAddr() string {
	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}
	return c.HTTPAddr
}

func (c *ServerConfig) GetPageSize() int {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	return c.PageSize
}

func (c *ServerConfig) GetPrefetchDistance() int {
	if c.PrefetchDistance <= 0 {
		c.PrefetchDistance = DefaultPrefetchDistance
	}
	return c.PrefetchDistance
}

func (c *ServerConfig) GetWatch() bool {
	return c.Watch
}
