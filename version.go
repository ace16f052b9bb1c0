package strand

import _ "embed"

// Version is the library version, embedded from the VERSION file at the
// repository root. It carries a trailing newline.
//
//go:embed VERSION
var Version string
