package buildinfo

import (
	"runtime"

	"github.com/yndnr/omfamily/internal/telemetry/metric"
	"github.com/yndnr/omfamily/pkg/labels"
)

// Build-time variables (set via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// FamilyName is the info family Register creates.
const FamilyName = "omfamily_build"

// Info contains build information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// Get returns the build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a formatted version string.
func String() string {
	i := Get()
	return i.Version + " (" + i.Commit + ", " + i.GoVersion + ") built at " + i.BuildTime
}

// Labels returns the build information as a label set.
func (i Info) Labels() labels.Set {
	return labels.MustNew(
		"version", i.Version,
		"commit", i.Commit,
		"go_version", i.GoVersion,
	)
}

// Register adds the build info family to r with one series for this binary.
func Register(r *metric.Registry) error {
	f, err := metric.NewInfoFamily[labels.Set](r, FamilyName, "Build information")
	if err != nil {
		return err
	}
	f.GetOrCreate(Get().Labels())
	return nil
}
