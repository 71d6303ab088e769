//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package tools

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func setPriority(pid int, priority string) error {
	nice, ok := niceFor(priority)
	if !ok {
		return fmt.Errorf("unknown priority %q", priority)
	}
	if nice == 0 {
		return nil
	}
	return unix.Setpriority(unix.PRIO_PROCESS, pid, nice)
}
