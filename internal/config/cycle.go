package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
)

// ScriptCycle walks a directory of script files endlessly, in sorted order,
// restarting from the first file after the last. It is layered above one
// engine/controller instance per script rather than folded into the
// iteration controller, which is documented as single-script.
type ScriptCycle struct {
	paths []string
	next  int
}

// NewScriptCycle resolves path: if it names a regular file, the cycle holds
// exactly that one path; if it names a directory, the cycle holds every
// regular file inside it, sorted by name.
func NewScriptCycle(path string) (*ScriptCycle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ferrors.ScriptError{Operation: "stat script path", Err: err, Details: path}
	}

	if !info.IsDir() {
		return &ScriptCycle{paths: []string{path}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, &ferrors.ScriptError{Operation: "read script directory", Err: err, Details: path}
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(path, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, &ferrors.ScriptError{Operation: "read script directory", Details: path + " contains no script files"}
	}
	return &ScriptCycle{paths: paths}, nil
}

// Next returns the next script path in round-robin order, wrapping back to
// the first path after the last.
func (c *ScriptCycle) Next() string {
	p := c.paths[c.next%len(c.paths)]
	c.next++
	return p
}

// Len reports how many distinct script paths the cycle holds.
func (c *ScriptCycle) Len() int { return len(c.paths) }
