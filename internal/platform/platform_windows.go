package platform

import (
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
)

const fontsKeyPath = `Software\Microsoft\Windows NT\CurrentVersion\Fonts`

const (
	hwndBroadcast = 0xffff
	wmFontChange  = 0x001d
)

// fontValueName builds the per-user registry value name Windows expects
// for a font file.
func fontValueName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ttf":
		return base + " (TrueType)"
	case ".otf":
		return base + " (OpenType)"
	}
	return base
}

func openFontsKey() (registry.Key, error) {
	return registry.OpenKey(registry.CURRENT_USER, fontsKeyPath, registry.SET_VALUE)
}

func broadcastFontChange() {
	user32 := windows.NewLazySystemDLL("user32.dll")
	proc := user32.NewProc("SendNotifyMessageW")
	proc.Call(hwndBroadcast, wmFontChange, 0, 0)
}

func registerFonts(fontDir string, filenames []string) {
	key, err := openFontsKey()
	if err != nil {
		logger.Warningf("Failed to open fonts registry key: %v", err)
		return
	}
	defer key.Close()

	for _, name := range filenames {
		path := filepath.Join(fontDir, name)
		if err := key.SetStringValue(fontValueName(name), path); err != nil {
			logger.Warningf("Failed to register %s: %v", name, err)
		}
	}
	broadcastFontChange()
}

func unregisterFonts(_ string, filenames []string) {
	key, err := openFontsKey()
	if err != nil {
		logger.Warningf("Failed to open fonts registry key: %v", err)
		return
	}
	defer key.Close()

	for _, name := range filenames {
		if err := key.DeleteValue(fontValueName(name)); err != nil {
			logger.Warningf("Failed to unregister %s: %v", name, err)
		}
	}
	broadcastFontChange()
}
