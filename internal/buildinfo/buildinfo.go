// Package buildinfo holds version data stamped in at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/gophtasks/internal/buildinfo.BuildVersion=v1.0.0"
package buildinfo

import (
	"fmt"
	"io"
)

const notAvailable = "N/A"

var (
	BuildVersion = notAvailable
	BuildDate    = notAvailable
	BuildCommit  = notAvailable
)

func value(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// PrintBuildData writes the version banner to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", value(BuildVersion))
	fmt.Fprintf(w, "Build date: %s\n", value(BuildDate))
	fmt.Fprintf(w, "Build commit: %s\n", value(BuildCommit))
}
