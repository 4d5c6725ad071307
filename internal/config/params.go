package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SeedMode selects how the iteration controller picks a seed for each run.
type SeedMode int

const (
	// SeedModeRange iterates i = Min, Min+1, ... up to Max (or forever if
	// Max < 0).
	SeedModeRange SeedMode = iota
	// SeedModeLoop cycles through a fixed, finite list of seeds, modulo
	// its length.
	SeedModeLoop
	// SeedModeDumpRaw runs exactly one iteration at a fixed seed and
	// writes the raw bytes sent/received to disk, then terminates.
	SeedModeDumpRaw
)

// RunParameters is the fully-resolved command surface the out-of-scope CLI
// shim hands to the engine: everything needed to pick a script, a target,
// and a seed-selection/verbosity policy.
type RunParameters struct {
	ScriptPath string
	Host       string
	SleepTime  time.Duration

	SeedMode  SeedMode
	Min       int
	Max       int // -1 means unbounded
	LoopSeeds []int
	DumpSeed  int
	DumpDir   string

	// Verbosity is three-valued: Quiet suppresses the sink entirely; the
	// default (both false) still constructs a real sink and logs a
	// transcript only for crash/halt events; LogAll additionally logs a
	// transcript for every iteration.
	Quiet  bool
	LogAll bool
}

// ParseSeedRange parses the "range" flag's three accepted shapes:
//
//	"X"    -> Min=X,   Max=X   (a single fixed seed, still advances forever after if Max were unbounded — callers
//	                            wanting open-ended single-start ranges should use "X-")
//	"X-"   -> Min=X,   Max=-1  (unbounded)
//	"X-Y"  -> Min=X,   Max=Y
func ParseSeedRange(s string) (min, max int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty range")
	}

	if !strings.Contains(s, "-") {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range %q: %w", s, err)
		}
		return v, v, nil
	}

	if strings.HasSuffix(s, "-") {
		v, err := strconv.Atoi(strings.TrimSuffix(s, "-"))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range %q: %w", s, err)
		}
		return v, -1, nil
	}

	parts := strings.SplitN(s, "-", 2)
	lo, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range %q: %w", s, err)
	}
	hi, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range %q: %w", s, err)
	}
	if hi < lo {
		return 0, 0, fmt.Errorf("invalid range %q: max %d is less than min %d", s, hi, lo)
	}
	return lo, hi, nil
}

// ParseLoopSeeds parses a comma-separated seed list, e.g. "100,200,300".
func ParseLoopSeeds(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	seeds := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q in loop list: %w", p, err)
		}
		seeds = append(seeds, v)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("loop seed list is empty")
	}
	return seeds, nil
}
