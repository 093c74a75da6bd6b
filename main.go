// Command vsg-sync measures inter-source audio timing offsets via cross
// correlation and muxes multiple video sources into one container with
// synchronized tracks and chapters.
package main

import (
	"fmt"
	"os"

	vsgsync "github.com/wingedonezero/Video-Sync-GUI-sub002/cmd/vsg-sync"
)

// version, buildDate, and systemID are stamped in at build time via
// -ldflags "-X main.version=... -X main.buildDate=... -X main.systemID=...".
var (
	version   = ""
	buildDate = ""
	systemID  = ""
)

func main() {
	root := vsgsync.RootCommand(version, buildDate, systemID)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
