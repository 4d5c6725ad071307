// Package mutate adapts an external byte-level mutation oracle: a child
// process invoked once per call, fed the candidate bytes on stdin, and read
// to completion on stdout. The adapter is stateless and re-entrant — every
// call spawns and collects an independent child, the same shape as the
// teacher's querier dialing a fresh socket per query rather than pooling one.
package mutate

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
)

// Oracle launches the external mutator binary and returns its mutated bytes.
type Oracle struct {
	// Path is the mutator executable, resolved once at construction (mirrors
	// exec.LookPath failures into ErrMutatorUnavailable up front rather than
	// on every call).
	Path string
}

// New resolves path (via exec.LookPath if it has no directory separator) and
// fails immediately with ferrors.ErrMutatorUnavailable if the binary cannot
// be found.
func New(path string) (*Oracle, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, &ferrors.MutatorError{Seed: -1, Err: errors.Join(ferrors.ErrMutatorUnavailable, err)}
	}
	return &Oracle{Path: resolved}, nil
}

// Mutate spawns the mutator child as `<Path> --seed <seed>`, writes input to
// its stdin, and returns everything it wrote to stdout. The child's exit
// status is not inspected, matching the mutator child contract.
func (o *Oracle) Mutate(ctx context.Context, seed int, input []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, o.Path, "--seed", strconv.Itoa(seed))
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, &ferrors.MutatorError{Seed: seed, Err: errors.Join(ferrors.ErrMutatorUnavailable, err)}
		}
		// A non-zero exit is not treated as a failure per the mutator child
		// contract (exit status is not inspected) unless the process never
		// produced any output at all, which we surface as a diagnostic.
		if stdout.Len() == 0 {
			return nil, &ferrors.MutatorError{Seed: seed, Err: err}
		}
	}

	return stdout.Bytes(), nil
}
