package tanuki

// set via -ldflags at build time
var (
	version  = "dev"
	revision = "unknown"
)
