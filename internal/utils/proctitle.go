//go:build linux || darwin

package utils

import "github.com/erikdubbelboer/gspt"

// SetProcTitle shows the service state in ps output, e.g.
// "axiskey: ACTIVE (SHIZUKU)".
func SetProcTitle(state string) {
	gspt.SetProcTitle(ProcTitle(state))
}
