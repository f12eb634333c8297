// Package utils holds small process helpers shared by the service.
package utils

const procName = "axiskey"

// ProcTitle formats the process title for state.
func ProcTitle(state string) string {
	if state == "" {
		return procName
	}
	return procName + ": " + state
}
