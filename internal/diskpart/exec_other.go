//go:build !windows
// +build !windows

package diskpart

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
