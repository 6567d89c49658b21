//go:build !linux && !darwin && !windows

package platform

func registerFonts(string, []string)   {}
func unregisterFonts(string, []string) {}
