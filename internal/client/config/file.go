package config

import (
	"github.com/dmitrijs2005/gophtasks/internal/cfgfile"
	"github.com/dmitrijs2005/gophtasks/internal/flagx"
	"github.com/dmitrijs2005/gophtasks/internal/timex"
)

// FileConfig is the on-disk client config. Missing fields keep their
// current values.
type FileConfig struct {
	ServerBaseURL  string         `json:"server_base_url" yaml:"server_base_url"`
	DatabasePath   string         `json:"database_path" yaml:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
}

func parseFile(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	c := &FileConfig{}
	if err := cfgfile.ReadFile(path, c); err != nil {
		return err
	}

	if c.ServerBaseURL != "" {
		config.ServerBaseURL = c.ServerBaseURL
	}
	if c.DatabasePath != "" {
		config.DatabasePath = c.DatabasePath
	}
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	return nil
}
