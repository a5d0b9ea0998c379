package model

import "testing"

func TestVariant(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		variant Variant
		base    bool
		display string
		slug    string
	}{
		{BaseVariant, true, "base", ""},
		{"Steinsaltz", false, "Steinsaltz", "steinsaltz"},
		{"Rabbeinu  Chananel", false, "Rabbeinu  Chananel", "rabbeinu_chananel"},
	}

	for _, tc := range testCases {
		t.Run(tc.display, func(t *testing.T) {
			t.Parallel()
			if tc.variant.IsBase() != tc.base {
				t.Errorf("expected IsBase %v, got %v", tc.base, tc.variant.IsBase())
			}
			if tc.variant.String() != tc.display {
				t.Errorf("expected %q, got %q", tc.display, tc.variant.String())
			}
			if tc.variant.Slug() != tc.slug {
				t.Errorf("expected slug %q, got %q", tc.slug, tc.variant.Slug())
			}
		})
	}
}

func TestWorkUnitString(t *testing.T) {
	t.Parallel()

	base := WorkUnit{Collection: "Berakhot", Locator: "2a"}
	if got := base.String(); got != "Berakhot 2a" {
		t.Errorf("expected %q, got %q", "Berakhot 2a", got)
	}

	rashi := WorkUnit{Collection: "Berakhot", Locator: "2a", Variant: "Rashi"}
	if got := rashi.String(); got != "Berakhot 2a (Rashi)" {
		t.Errorf("expected %q, got %q", "Berakhot 2a (Rashi)", got)
	}
}

func TestDocumentHasContent(t *testing.T) {
	t.Parallel()

	real := Block{Label: "2a", Text: CanonicalText{Lines: []string{"text"}}}
	marker := Block{Label: "2b", Text: PlaceholderText(NoContent)}

	testCases := []struct {
		name     string
		doc      Document
		expected bool
	}{
		{"real block", Document{Blocks: []Block{marker, real}, Body: "x"}, true},
		{"only placeholders", Document{Blocks: []Block{marker}, Body: "--- 2b ---\n" + NoContent}, false},
		{"blank body", Document{Blocks: []Block{real}, Body: " \n\t"}, false},
		{"no blocks", Document{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.doc.HasContent(); got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}
