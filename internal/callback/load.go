//go:build linux || darwin

package callback

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
)

// Bundle is everything a processor directory can contribute: a message
// processor, an exception processor, and a monitor. Any of the three may be
// absent, in which case Load substitutes the corresponding default.
type Bundle struct {
	Processor Processor
	Exception ExceptionProcessor
	Monitor   Monitor
}

// Symbol names a loaded plugin must export, if it wants to participate in
// that slot of the bundle.
const (
	processorSymbol = "Processor"
	exceptionSymbol = "ExceptionProcessor"
	monitorSymbol   = "Monitor"
)

// Load builds a Bundle from every *.so plugin found directly inside dir.
// A missing directory is not an error: it is equivalent to an empty one,
// since "absence of any [contribution] is valid" per the processor
// directory contract. Each plugin may export any subset of the three
// symbols; the last plugin to export a given symbol wins.
func Load(dir string) (Bundle, error) {
	b := Bundle{
		Processor: DefaultProcessor{},
		Exception: RethrowingExceptionProcessor{},
		Monitor:   NoopMonitor{},
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return b, &ferrors.ScriptError{Operation: "read processor directory", Err: err, Details: dir}
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".so" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		p, err := plugin.Open(path)
		if err != nil {
			return b, &ferrors.ScriptError{Operation: "load processor plugin", Err: err, Details: path}
		}

		if sym, err := p.Lookup(processorSymbol); err == nil {
			proc, ok := sym.(Processor)
			if !ok {
				return b, &ferrors.ScriptError{Operation: "load processor plugin", Details: fmt.Sprintf("%s: %s does not implement Processor", path, processorSymbol)}
			}
			b.Processor = proc
		}
		if sym, err := p.Lookup(exceptionSymbol); err == nil {
			exc, ok := sym.(ExceptionProcessor)
			if !ok {
				return b, &ferrors.ScriptError{Operation: "load processor plugin", Details: fmt.Sprintf("%s: %s does not implement ExceptionProcessor", path, exceptionSymbol)}
			}
			b.Exception = exc
		}
		if sym, err := p.Lookup(monitorSymbol); err == nil {
			mon, ok := sym.(Monitor)
			if !ok {
				return b, &ferrors.ScriptError{Operation: "load processor plugin", Details: fmt.Sprintf("%s: %s does not implement Monitor", path, monitorSymbol)}
			}
			b.Monitor = mon
		}
	}

	return b, nil
}
