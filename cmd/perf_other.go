//go:build !linux

package cmd

import "fmt"

func withPerf(name string, fn func() error) error {
	fmt.Printf("%s: perf counters are only available on linux\n", name)
	return fn()
}
