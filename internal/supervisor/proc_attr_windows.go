//go:build windows

package supervisor

import "syscall"

// getSysProcAttr returns the sys proc attr for the current platform
func getSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow: true,
	}
}
