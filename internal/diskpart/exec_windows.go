//go:build windows
// +build windows

package diskpart

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// sysProcAttr suppresses any console window the tool would otherwise present.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
