//go:build !windows
// +build !windows

package diskpart

type unsupportedProbe struct{}

func platformProbe() ElevationProbe {
	return unsupportedProbe{}
}

// IsElevated always reports false: the external tool only exists on Windows,
// so every operation short-circuits to a privilege failure elsewhere.
func (unsupportedProbe) IsElevated() bool {
	return false
}
