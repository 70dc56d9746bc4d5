package dates

// DayTokens lists the recognized day names followed by their abbreviations.
// The order is the order in which matches are inserted for a single line.
var DayTokens = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"mon", "tue", "tues", "wed", "thur", "thurs", "fri", "sat", "sun",
}

// MonthTokens lists the recognized month names followed by their
// abbreviations. "may" is both the full and the short form and appears once.
var MonthTokens = []string{
	"january", "february", "march", "april", "may", "june", "july", "august",
	"september", "october", "november", "december",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
}

var (
	daySet   = tokenSet(DayTokens)
	monthSet = tokenSet(MonthTokens)
)

func tokenSet(tokens []string) map[string]struct{} {
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// IsDayToken reports whether s is exactly one of DayTokens.
func IsDayToken(s string) bool {
	_, ok := daySet[s]
	return ok
}

// IsMonthToken reports whether s is exactly one of MonthTokens.
func IsMonthToken(s string) bool {
	_, ok := monthSet[s]
	return ok
}
