//go:build !linux && !darwin

package utils

func SetProcTitle(string) {}
