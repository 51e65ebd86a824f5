package main

import "runtime"

// maxAutoWorkers caps the automatic worker count; each worker runs a browser.
const maxAutoWorkers = 8

// resolveWorkers determines how many renders run at once.
// Priority: explicit flag > RESUMEPDF_WORKERS > GOMAXPROCS-based calculation.
func resolveWorkers(flagWorkers, envWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}
	if envWorkers > 0 {
		return envWorkers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / 2
	if n < 1 {
		return 1
	}
	if n > maxAutoWorkers {
		return maxAutoWorkers
	}
	return n
}
