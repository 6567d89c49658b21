package platform

import (
	"os/exec"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
)

// Fontconfig picks up changes once its cache is rebuilt.
func refreshFontconfig() {
	path, err := exec.LookPath("fc-cache")
	if err != nil {
		logger.Warningf("fc-cache not found, fonts may not appear until the next cache rebuild")
		return
	}
	if out, err := exec.Command(path, "-f").CombinedOutput(); err != nil {
		logger.Warningf("fc-cache failed: %v (%s)", err, out)
	}
}

func registerFonts(string, []string) {
	refreshFontconfig()
}

func unregisterFonts(string, []string) {
	refreshFontconfig()
}
