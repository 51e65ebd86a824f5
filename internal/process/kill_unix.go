//go:build !windows

package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid, taking the
// browser's renderer and GPU children down with it.
// Non-positive PIDs are ignored: -0 would target the caller's own group.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	// ESRCH is expected when the group already exited.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
