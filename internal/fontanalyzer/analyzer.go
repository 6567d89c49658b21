package fontanalyzer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tdewolff/font"
)

// Inspector reports structural facts about a font file.
//
// IsVariable propagates parse failures because variable-ness decides which
// bucket a file lands in and the caller picks the fallback. WeightClass and
// IsItalic only filter within an already chosen bucket, so they return safe
// defaults instead of failing and silently eliminating usable fonts.
type Inspector interface {
	IsVariable(path string) (bool, error)
	WeightClass(path string) int
	IsItalic(path string) bool
}

// SFNTInspector inspects font binaries on disk. It reads TTF, OTF, WOFF and
// WOFF2 containers.
type SFNTInspector struct{}

func (SFNTInspector) parse(path string) (*font.SFNT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	sfnt, err := font.ParseFont(data, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return sfnt, nil
}

// IsVariable reports whether the font carries a variable-font axis table.
func (i SFNTInspector) IsVariable(path string) (bool, error) {
	sfnt, err := i.parse(path)
	if err != nil {
		return false, err
	}
	_, ok := sfnt.Tables["fvar"]
	return ok, nil
}

// WeightClass returns the OS/2 usWeightClass, or 400 (regular) when the font
// cannot be parsed or lacks an OS/2 table.
func (i SFNTInspector) WeightClass(path string) int {
	sfnt, err := i.parse(path)
	if err != nil || sfnt.OS2 == nil {
		return 400
	}
	return int(sfnt.OS2.UsWeightClass)
}

// IsItalic reports whether the OS/2 fsSelection italic bit is set, or false
// when the font cannot be parsed or lacks an OS/2 table.
func (i SFNTInspector) IsItalic(path string) bool {
	sfnt, err := i.parse(path)
	if err != nil || sfnt.OS2 == nil {
		return false
	}
	return sfnt.OS2.FsSelection&0x0001 != 0
}
