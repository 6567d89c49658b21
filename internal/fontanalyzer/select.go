package fontanalyzer

import (
	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/types"
)

// Style names accepted in a style whitelist.
const (
	StyleRoman  = "roman"
	StyleItalic = "italic"
)

// FullStyleSet is the "no filter" style whitelist.
var FullStyleSet = []string{StyleRoman, StyleItalic}

// styleFilterActive reports whether styles is a strict subset of the full
// roman+italic set. Order does not matter.
func styleFilterActive(styles []string) bool {
	var roman, italic bool
	for _, s := range styles {
		switch s {
		case StyleRoman:
			roman = true
		case StyleItalic:
			italic = true
		}
	}
	return !(roman && italic)
}

func containsStyle(styles []string, style string) bool {
	for _, s := range styles {
		if s == style {
			return true
		}
	}
	return false
}

// Select picks the first priority whose bucket yields a non-empty result.
//
// Variable formats are selected whole: a single variable font spans the full
// weight axis and both styles, so weight and style whitelists are meaningless
// for them and only produce a warning. Static formats are filtered by the
// weight whitelist (empty = no filter) and the style whitelist (the full set
// = no filter); a bucket that filters down to nothing is skipped and the next
// priority is tried. Returns the selected files and the matched label, or
// (nil, "") when no priority matched. There is no scoring across formats.
func Select(buckets Buckets, priorities []string, weights []int, styles []string, insp Inspector) ([]string, string) {
	for _, pri := range priorities {
		bucket := buckets.ByLabel(pri)
		if len(bucket) == 0 {
			continue
		}

		if types.IsVariableFormat(pri) {
			if len(weights) > 0 || styleFilterActive(styles) {
				logger.Warningf("Weights and styles are ignored for variable fonts.")
			}
			return bucket, pri
		}

		candidates := bucket
		if len(weights) > 0 {
			candidates = filterByWeight(candidates, weights, insp)
		}
		if styleFilterActive(styles) {
			candidates = filterByStyle(candidates, styles, insp)
		}
		if len(candidates) > 0 {
			return candidates, pri
		}
	}
	return nil, ""
}

func filterByWeight(files []string, weights []int, insp Inspector) []string {
	var kept []string
	for _, f := range files {
		weight := insp.WeightClass(f)
		for _, w := range weights {
			if weight == w {
				kept = append(kept, f)
				break
			}
		}
	}
	return kept
}

func filterByStyle(files []string, styles []string, insp Inspector) []string {
	var kept []string
	for _, f := range files {
		if insp.IsItalic(f) {
			if containsStyle(styles, StyleItalic) {
				kept = append(kept, f)
			}
		} else if containsStyle(styles, StyleRoman) {
			kept = append(kept, f)
		}
	}
	return kept
}
