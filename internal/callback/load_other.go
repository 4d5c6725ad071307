//go:build !linux && !darwin

package callback

import "github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"

// Bundle mirrors the linux/darwin Bundle shape on platforms where
// plugin.Open is unavailable.
type Bundle struct {
	Processor Processor
	Exception ExceptionProcessor
	Monitor   Monitor
}

// Load returns the default bundle for an empty dir and fails for any other
// dir on platforms without Go plugin support.
func Load(dir string) (Bundle, error) {
	b := Bundle{
		Processor: DefaultProcessor{},
		Exception: RethrowingExceptionProcessor{},
		Monitor:   NoopMonitor{},
	}
	if dir == "" {
		return b, nil
	}
	return b, &ferrors.ScriptError{Operation: "load processor plugin", Details: "Go plugins are only supported on linux and darwin"}
}
