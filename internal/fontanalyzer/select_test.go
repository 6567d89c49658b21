package fontanalyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deploymenttheory/go-font-manager/internal/types"
)

func TestSelectFirstMatchWins(t *testing.T) {
	b := Buckets{StaticTTF: []string{"a.ttf", "b.ttf"}}

	files, label := Select(b,
		[]string{types.FormatVariableTTF, types.FormatStaticTTF},
		nil, FullStyleSet, &fakeInspector{})

	assert.Equal(t, []string{"a.ttf", "b.ttf"}, files)
	assert.Equal(t, types.FormatStaticTTF, label)
}

func TestSelectVariableBucketBypassesFilters(t *testing.T) {
	b := Buckets{
		VariableTTF: []string{"Inter[wght].ttf"},
		StaticTTF:   []string{"Inter-Regular.ttf"},
	}
	insp := &fakeInspector{weights: map[string]int{"Inter[wght].ttf": 100}}

	files, label := Select(b,
		[]string{types.FormatVariableTTF, types.FormatStaticTTF},
		[]int{700}, []string{StyleItalic}, insp)

	// The whole variable bucket is returned unfiltered.
	assert.Equal(t, []string{"Inter[wght].ttf"}, files)
	assert.Equal(t, types.FormatVariableTTF, label)
}

func TestSelectWeightAndStyleFilters(t *testing.T) {
	b := Buckets{StaticTTF: []string{"Regular.ttf", "Bold.ttf", "Italic.ttf", "BoldItalic.ttf"}}
	insp := &fakeInspector{
		weights: map[string]int{"Bold.ttf": 700, "BoldItalic.ttf": 700},
		italics: map[string]bool{"Italic.ttf": true, "BoldItalic.ttf": true},
	}

	files, label := Select(b, []string{types.FormatStaticTTF}, []int{700}, FullStyleSet, insp)
	assert.Equal(t, []string{"Bold.ttf", "BoldItalic.ttf"}, files)
	assert.Equal(t, types.FormatStaticTTF, label)

	files, label = Select(b, []string{types.FormatStaticTTF}, []int{700}, []string{StyleItalic}, insp)
	assert.Equal(t, []string{"BoldItalic.ttf"}, files)
	assert.Equal(t, types.FormatStaticTTF, label)

	files, label = Select(b, []string{types.FormatStaticTTF}, nil, []string{StyleRoman}, insp)
	assert.Equal(t, []string{"Regular.ttf", "Bold.ttf"}, files)
	assert.Equal(t, types.FormatStaticTTF, label)
}

func TestSelectFallsThroughWhenFilteredEmpty(t *testing.T) {
	b := Buckets{
		OTF:       []string{"Light.otf"},
		StaticTTF: []string{"Bold.ttf"},
	}
	insp := &fakeInspector{weights: map[string]int{"Light.otf": 300, "Bold.ttf": 700}}

	files, label := Select(b,
		[]string{types.FormatOTF, types.FormatStaticTTF},
		[]int{700}, FullStyleSet, insp)

	assert.Equal(t, []string{"Bold.ttf"}, files)
	assert.Equal(t, types.FormatStaticTTF, label)
}

func TestSelectNoMatch(t *testing.T) {
	b := Buckets{StaticTTF: []string{"Regular.ttf"}}

	files, label := Select(b, []string{types.FormatOTF}, nil, FullStyleSet, &fakeInspector{})
	assert.Nil(t, files)
	assert.Empty(t, label)

	files, label = Select(b, nil, nil, FullStyleSet, &fakeInspector{})
	assert.Nil(t, files)
	assert.Empty(t, label)
}

func TestSelectVariableOverStatic(t *testing.T) {
	// Three files: static roman, static italic, variable.
	insp := &fakeInspector{
		variable: map[string]bool{"Inter[wght].ttf": true},
		italics:  map[string]bool{"Inter-Italic.ttf": true},
	}
	b := Categorize([]string{"Inter-Regular.ttf", "Inter-Italic.ttf", "Inter[wght].ttf"}, insp)

	files, label := Select(b,
		[]string{types.FormatVariableTTF, types.FormatStaticTTF},
		nil, FullStyleSet, insp)
	assert.Equal(t, []string{"Inter[wght].ttf"}, files)
	assert.Equal(t, types.FormatVariableTTF, label)

	files, label = Select(b, []string{types.FormatStaticTTF}, []int{400}, []string{StyleItalic}, insp)
	assert.Equal(t, []string{"Inter-Italic.ttf"}, files)
	assert.Equal(t, types.FormatStaticTTF, label)
}
