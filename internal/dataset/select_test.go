package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testClasses = FeatureClasses{
	{Feature: "Age", Class: "Clinical"},
	{Feature: "TMB", Class: "Tumor"},
	{Feature: "LDH", Class: "Blood"},
	{Feature: "Sex", Class: "Clinical"},
	{Feature: "Other", Class: "Imaging"},
}

func TestCapitalize(t *testing.T) {
	for in, want := range map[string]string{
		"clinical": "Clinical",
		"TUMOR":    "Tumor",
		"bLoOd":    "Blood",
		"":         "",
	} {
		assert.Equal(t, want, Capitalize(in), in)
	}
}

func TestSelectFeatures(t *testing.T) {
	tests := []struct {
		name     string
		excluded []string
		want     []string
	}{
		{"no exclusions", nil, []string{"Age", "TMB", "LDH", "Sex"}},
		{"exclude tumor", []string{"tumor"}, []string{"Age", "LDH", "Sex"}},
		{"case insensitive", []string{"CLINICAL", "Blood"}, []string{"TMB"}},
		{"exclude all", []string{"clinical", "tumor", "blood"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectFeatures(testClasses, KnownClasses, tt.excluded))
		})
	}
}

func TestSelectFeatures_Idempotent(t *testing.T) {
	first := SelectFeatures(testClasses, KnownClasses, nil)
	second := SelectFeatures(testClasses, KnownClasses, []string{})
	assert.Equal(t, first, second)
}
