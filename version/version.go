package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string       `json:"version"`
	GitCommit string       `json:"git_commit,omitempty"`
	BuildTime string       `json:"build_time,omitempty"`
	GoVersion string       `json:"go_version"`
	Platform  string       `json:"platform"`
	Dirty     bool         `json:"dirty,omitempty"`
	Release   bool         `json:"release"`
	Deps      []Dependency `json:"deps,omitempty"`
}

// Dependency is a module linked into the binary.
type Dependency struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// backends lists the modules whose versions matter when reporting an ingest
// problem: the transports, buses and the decoder.
var backends = []string{
	"github.com/segmentio/kafka-go",
	"github.com/redis/go-redis/v9",
	"github.com/aws/aws-sdk-go-v2/service/s3",
	"golang.org/x/text",
}

// Get returns version information, filling gaps from the embedded build
// info when ldflags were not set.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return fromBuildInfo(bi)
}

func fromBuildInfo(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi != nil {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
		for _, dep := range bi.Deps {
			for _, want := range backends {
				if dep.Path == want {
					info.Deps = append(info.Deps, Dependency{Path: dep.Path, Version: dep.Version})
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	info.Release = info.Version != "dev" && !info.Dirty && !strings.Contains(info.Version, "dirty")
	return info
}

// Short renders "version[-commit][-dirty]".
func (i Info) Short() string {
	s := i.Version
	if i.GitCommit != "" {
		s += "-" + i.GitCommit
	}
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

// String renders the short version with the toolchain and build time.
func (i Info) String() string {
	s := fmt.Sprintf("tabkit %s (%s, %s)", i.Short(), i.GoVersion, i.Platform)
	if i.BuildTime != "" {
		s += " built " + i.BuildTime
	}
	return s
}
