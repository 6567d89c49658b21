// Package platform notifies the operating system about font changes.
// Registration is best effort: failures are logged and never abort an
// install or uninstall.
package platform

// RegisterFonts makes newly installed fonts visible to the OS.
func RegisterFonts(fontDir string, filenames []string) {
	registerFonts(fontDir, filenames)
}

// UnregisterFonts removes OS bookkeeping for deleted fonts.
func UnregisterFonts(fontDir string, filenames []string) {
	unregisterFonts(fontDir, filenames)
}
