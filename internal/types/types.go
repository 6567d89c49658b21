package types

// Format labels combine the container type with variable/static-ness.
// OTF is always treated as static; variable OTF fonts are not distinguished.
const (
	FormatVariableTTF   = "variable-ttf"
	FormatOTF           = "otf"
	FormatStaticTTF     = "static-ttf"
	FormatVariableWOFF2 = "variable-woff2"
	FormatVariableWOFF  = "variable-woff"
	FormatStaticWOFF2   = "static-woff2"
	FormatStaticWOFF    = "static-woff"
)

// ValidFormats lists every recognized format label.
var ValidFormats = []string{
	FormatVariableTTF,
	FormatOTF,
	FormatStaticTTF,
	FormatVariableWOFF2,
	FormatVariableWOFF,
	FormatStaticWOFF2,
	FormatStaticWOFF,
}

// DefaultPriorities is the format preference order used when the caller
// supplies none.
var DefaultPriorities = []string{FormatVariableTTF, FormatOTF, FormatStaticTTF}

// FormatExtensions maps each format label to the file extension its entries
// must carry.
var FormatExtensions = map[string]string{
	FormatVariableTTF:   ".ttf",
	FormatStaticTTF:     ".ttf",
	FormatOTF:           ".otf",
	FormatVariableWOFF:  ".woff",
	FormatStaticWOFF:    ".woff",
	FormatVariableWOFF2: ".woff2",
	FormatStaticWOFF2:   ".woff2",
}

// FontExtensions lists the file extensions treated as font files.
var FontExtensions = []string{".ttf", ".otf", ".woff", ".woff2"}

// ArchiveExtensions lists the release asset extensions the downloader can
// extract.
var ArchiveExtensions = []string{".zip", ".tar.xz", ".tar.gz", ".tgz"}

// IsValidFormat reports whether label is one of the recognized format labels.
func IsValidFormat(label string) bool {
	for _, f := range ValidFormats {
		if f == label {
			return true
		}
	}
	return false
}

// IsVariableFormat reports whether label names a variable format.
func IsVariableFormat(label string) bool {
	return label == FormatVariableTTF || label == FormatVariableWOFF || label == FormatVariableWOFF2
}

// IsWebFormat reports whether label names a WOFF or WOFF2 format. Installing
// web formats into a system font directory is refused without --force.
func IsWebFormat(label string) bool {
	switch label {
	case FormatVariableWOFF, FormatStaticWOFF, FormatVariableWOFF2, FormatStaticWOFF2:
		return true
	}
	return false
}

// Asset is one downloadable file attached to a GitHub release.
type Asset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// FontEntry records one installed font file in the manifest.
type FontEntry struct {
	Hash     string `json:"hash"`
	Type     string `json:"type"`
	Version  string `json:"version"`
	Owner    string `json:"owner"`
	RepoName string `json:"repo_name"`

	// Filename is carried inside the record by older manifests. The outer
	// map key is canonical; this field is cleared on load and never written.
	Filename string `json:"filename,omitempty"`
}

// ExportedFontEntry is the cross-machine sharing shape of a FontEntry. The
// hash is dropped because it only describes one machine's on-disk bytes.
type ExportedFontEntry struct {
	Type     string `json:"type"`
	Version  string `json:"version"`
	Owner    string `json:"owner,omitempty"`
	RepoName string `json:"repo_name,omitempty"`
}
