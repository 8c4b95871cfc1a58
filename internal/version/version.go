// Package version holds build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time, e.g.
//
//	go build -ldflags "-X github.com/longkey1/ragchat/internal/version.Version=v0.1.0"
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Short returns the version number only.
func Short() string {
	return resolved().version
}

// Info returns version, commit, build time and Go version on separate lines.
func Info() string {
	b := resolved()
	return fmt.Sprintf("Version:    %s\nCommit:     %s\nBuild Time: %s\nGo Version: %s",
		b.version, orUnknown(b.commit), orUnknown(b.buildTime), runtime.Version())
}

type build struct {
	version   string
	commit    string
	buildTime string
}

// resolved falls back to the module build info for `go install` builds.
func resolved() build {
	b := build{version: Version, commit: Commit, buildTime: BuildTime}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if b.version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.commit == "" {
				b.commit = s.Value
			}
		case "vcs.time":
			if b.buildTime == "" {
				b.buildTime = s.Value
			}
		}
	}
	return b
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
