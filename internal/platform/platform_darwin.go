package platform

// CoreText watches the user font directory, so no extra work is needed.
func registerFonts(string, []string)   {}
func unregisterFonts(string, []string) {}
