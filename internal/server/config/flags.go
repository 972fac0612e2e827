package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/flagx"
)

// parseFlags overlays values given on the command line.
//
//	-a string   HTTP bind address
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-t int      token validity, minutes
//	-b int      bcrypt cost
//	-k bool     mark the auth cookie Secure
//	-p string   landing path after sign-in
//	-l string   log level
func parseFlags(config *Config, osArgs []string) error {
	args := flagx.FilterArgs(osArgs, []string{"-a", "-d", "-s", "-t", "-b", "-k", "-p", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	ttl := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.BoolVar(&config.SecureCookie, "k", config.SecureCookie, "send the auth cookie only over HTTPS")
	fs.StringVar(&config.DefaultPath, "p", config.DefaultPath, "landing path after sign-in")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.TokenValidityDuration = time.Duration(*ttl) * time.Minute
	return nil
}
