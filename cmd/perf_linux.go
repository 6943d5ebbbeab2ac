//go:build linux

package cmd

import (
	"fmt"

	perf "github.com/hodgesds/perf-utils"
)

// withPerf runs fn and prints the CPU instructions it retired. fn still runs
// when the counters cannot be opened.
func withPerf(name string, fn func() error) (err error) {
	var (
		ran   bool
		fnErr error
		pv    *perf.ProfileValue
	)
	pv, err = perf.CPUInstructions(func() error {
		ran = true
		fnErr = fn()
		return fnErr
	})
	if !ran {
		fmt.Printf("%s: perf counters unavailable: %v\n", name, err)
		return fn()
	}
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		fmt.Printf("%s: perf counters unavailable: %v\n", name, err)
		return nil
	}
	fmt.Printf("%-24s %d CPU instructions\n", name, pv.Value)
	return
}
