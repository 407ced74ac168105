package buildconfig

// Build-time variables injected via ldflags:
//
//	go build -ldflags "-X github.com/achworks/achd/internal/buildconfig.version=v1.2.0 -X github.com/achworks/achd/internal/buildconfig.commit=$(git rev-parse --short HEAD)"
var (
	version = "dev"
	commit  = "unknown"
)

// Version returns the build version
func Version() string {
	return version
}

// Commit returns the git commit hash
func Commit() string {
	return commit
}

// VersionInfo returns a fresh map with the version and commit, safe for the
// caller to extend.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
	}
}
