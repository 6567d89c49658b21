package fontanalyzer

import (
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/types"
)

// Buckets partitions font files by container format and variable/static-ness.
// Input order is preserved within each bucket, and every input file lands in
// exactly one bucket.
type Buckets struct {
	VariableTTF   []string
	StaticTTF     []string
	OTF           []string
	VariableWOFF  []string
	StaticWOFF    []string
	VariableWOFF2 []string
	StaticWOFF2   []string
}

// ByLabel returns the bucket for a format label, or nil for an unknown label.
func (b Buckets) ByLabel(label string) []string {
	switch label {
	case types.FormatVariableTTF:
		return b.VariableTTF
	case types.FormatStaticTTF:
		return b.StaticTTF
	case types.FormatOTF:
		return b.OTF
	case types.FormatVariableWOFF:
		return b.VariableWOFF
	case types.FormatStaticWOFF:
		return b.StaticWOFF
	case types.FormatVariableWOFF2:
		return b.VariableWOFF2
	case types.FormatStaticWOFF2:
		return b.StaticWOFF2
	}
	return nil
}

// Total returns the number of files across all buckets.
func (b Buckets) Total() int {
	return len(b.VariableTTF) + len(b.StaticTTF) + len(b.OTF) +
		len(b.VariableWOFF) + len(b.StaticWOFF) +
		len(b.VariableWOFF2) + len(b.StaticWOFF2)
}

// Categorize partitions font files into the seven format buckets. Extensions
// are matched case-insensitively. OTF files are never probed for variable
// tables. For the other containers an introspection failure routes the file
// to the static bucket: a font must never be lost to an inspection error, but
// variability must never be claimed without evidence.
func Categorize(files []string, insp Inspector) Buckets {
	var b Buckets
	for _, f := range files {
		switch strings.ToLower(filepath.Ext(f)) {
		case ".otf":
			b.OTF = append(b.OTF, f)
		case ".ttf":
			routeVariable(f, insp, &b.VariableTTF, &b.StaticTTF)
		case ".woff":
			routeVariable(f, insp, &b.VariableWOFF, &b.StaticWOFF)
		case ".woff2":
			routeVariable(f, insp, &b.VariableWOFF2, &b.StaticWOFF2)
		}
	}
	return b
}

func routeVariable(path string, insp Inspector, variable, static *[]string) {
	isVar, err := insp.IsVariable(path)
	if err != nil {
		logger.Debugf("Could not inspect %s, treating as static: %v", filepath.Base(path), err)
		*static = append(*static, path)
		return
	}
	if isVar {
		*variable = append(*variable, path)
	} else {
		*static = append(*static, path)
	}
}
