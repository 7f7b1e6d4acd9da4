//go:build windows
// +build windows

package diskpart

import "golang.org/x/sys/windows"

type windowsProbe struct{}

func platformProbe() ElevationProbe {
	return windowsProbe{}
}

// IsElevated checks membership in the builtin Administrators group for the
// current process token.
func (windowsProbe) IsElevated() bool {
	var sid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	token := windows.Token(0)
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token); err != nil {
		return false
	}
	defer token.Close()

	isMember, err := token.IsMember(sid)
	if err != nil {
		return false
	}
	return isMember
}
