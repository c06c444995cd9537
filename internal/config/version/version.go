package version

// Build metadata, normally overwritten at build time via -ldflags.
var (
	Version      = "0.1.0"
	Toolname     = "repodb"
	Organization = "unknown"
	BuildDate    = "unknown"
	CommitSHA    = "unknown"
)
