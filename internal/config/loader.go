// Package config loads a FuzzerData script from disk and resolves the
// run-wide parameters (host, seed-selection mode, verbosity) that the
// out-of-scope CLI shim hands to the engine.
//
// The on-disk script format itself is an external collaborator's concern
// per the design — this package only needs *a* concrete shape to load in
// order for the rest of the engine to run and be tested, so it reads the
// natural Go-native encoding (JSON) of script.FuzzerData.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/script"
)

// Load reads and parses a single script file into a FuzzerData value.
func Load(path string) (*script.FuzzerData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ferrors.ScriptError{Operation: "read script file", Err: err, Details: path}
	}

	var data script.FuzzerData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &ferrors.ScriptError{Operation: "parse script file", Err: err, Details: path}
	}

	if err := validate(&data); err != nil {
		return nil, err
	}
	// The JSON form carries only each subcomponent's original bytes; start
	// the altered bytes as a copy of them, as NewSubcomponent does.
	for _, m := range data.Messages.Messages {
		m.ResetSubcomponents()
	}
	return &data, nil
}

func validate(data *script.FuzzerData) error {
	if data.Messages == nil || data.Messages.Len() == 0 {
		return &ferrors.ScriptError{Operation: "validate script", Err: fmt.Errorf("message collection is empty")}
	}
	for i, m := range data.Messages.Messages {
		if len(m.Subcomponents) == 0 {
			return &ferrors.ScriptError{
				Operation: "validate script",
				Err:       fmt.Errorf("message %d has no subcomponents", i),
			}
		}
	}
	return nil
}
