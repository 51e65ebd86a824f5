//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillTree force-terminates pid and its child processes with taskkill.
// Non-positive PIDs are ignored.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	// A process that already exited makes taskkill fail; nothing left to do.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
