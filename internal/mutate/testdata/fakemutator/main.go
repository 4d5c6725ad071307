// Command fakemutator is a test double for the external mutation oracle: it
// reverses stdin and writes the result to stdout, ignoring --seed entirely.
// Built on demand by mutate_test.go rather than exercised as a real fuzzer.
package main

import (
	"flag"
	"io"
	"os"
)

func main() {
	flag.Int("seed", 0, "ignored by the fake mutator")
	flag.Parse()

	in, err := io.ReadAll(os.Stdin)
	if err != nil {
		os.Exit(1)
	}
	out := make([]byte, len(in))
	for i, b := range in {
		out[len(in)-1-i] = b
	}
	_, _ = os.Stdout.Write(out)
}
