package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/flagx"
)

// parseFlags overlays command-line values.
//
//	-a string   server base URL
//	-f string   local database path
//	-i int      request timeout in seconds
func parseFlags(config *Config, osArgs []string) error {
	args := flagx.FilterArgs(osArgs, []string{"-a", "-f", "-i"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.ServerBaseURL, "a", config.ServerBaseURL, "server base URL")
	fs.StringVar(&config.DatabasePath, "f", config.DatabasePath, "local database path")
	timeout := fs.Int("i", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
