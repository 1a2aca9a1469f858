// Package build carries name, version and commit metadata injected with
// -ldflags at compile time. Development builds fall back to the defaults
// below.
package build

var (
	buildName    = "ftspreview"
	buildVersion = "dev"
	buildCommit  = "none"
	buildTime    = "unknown"
)

// Info is the resolved build metadata of the running binary.
type Info struct {
	Name    string
	Version string
	Commit  string
	Time    string
}

// Get returns the build metadata.
func Get() Info {
	return Info{
		Name:    buildName,
		Version: buildVersion,
		Commit:  buildCommit,
		Time:    buildTime,
	}
}
