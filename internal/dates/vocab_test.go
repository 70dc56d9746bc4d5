package dates

import "testing"

func TestVocabulary_Membership(t *testing.T) {
	for _, tok := range []string{"monday", "tues", "thurs", "sun"} {
		if !IsDayToken(tok) {
			t.Errorf("IsDayToken(%q) = false, want true", tok)
		}
	}
	for _, tok := range []string{"september", "sept", "sep", "may", "dec"} {
		if !IsMonthToken(tok) {
			t.Errorf("IsMonthToken(%q) = false, want true", tok)
		}
	}
	for _, tok := range []string{"Monday", "mo", "sundays", "decem"} {
		if IsDayToken(tok) || IsMonthToken(tok) {
			t.Errorf("%q should not be a vocabulary token", tok)
		}
	}
}

func TestVocabulary_ThreeLetterFormForEveryMonth(t *testing.T) {
	for _, full := range MonthTokens[:12] {
		if !IsMonthToken(full[:3]) {
			t.Errorf("missing 3-letter form %q for %q", full[:3], full)
		}
	}
}

func TestVocabulary_NoDuplicates(t *testing.T) {
	for name, list := range map[string][]string{"days": DayTokens, "months": MonthTokens} {
		seen := make(map[string]bool)
		for _, tok := range list {
			if seen[tok] {
				t.Errorf("%s: duplicate token %q", name, tok)
			}
			seen[tok] = true
		}
	}
}
