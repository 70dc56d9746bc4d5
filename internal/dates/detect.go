package dates

import (
	"strconv"
	"strings"
)

// Numeric run lengths that classify a number.
const (
	maxDateDigits = 3
	yearDigits    = 4
	maxMonthValue = 12
)

// NumericRuns returns the maximal runs of ASCII digits in line, in order.
// Every non-digit character acts as a separator and empty fragments are
// dropped, so "07/04/2023" yields ["07" "04" "2023"].
func NumericRuns(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r < '0' || r > '9'
	})
}

// Triple is a line read as a complete numeric date.
type Triple struct {
	Month string `json:"month" yaml:"month"`
	Date  string `json:"date" yaml:"date"`
	Year  string `json:"year" yaml:"year"`
}

// FullDateTriple interprets a line holding exactly three numeric runs.
//
// When the first run is greater than 12 it cannot be a month and the line is
// read as date, month, year. Otherwise the line is read as month, date, year.
// The second result is false when the line does not have exactly three runs;
// that is the normal outcome for most lines and carries no error.
func FullDateTriple(line string) (Triple, bool) {
	runs := NumericRuns(line)
	if len(runs) != 3 {
		return Triple{}, false
	}
	if exceedsMonth(runs[0]) {
		return Triple{Date: runs[0], Month: runs[1], Year: runs[2]}, true
	}
	return Triple{Month: runs[0], Date: runs[1], Year: runs[2]}, true
}

// exceedsMonth reports whether the digit run is numerically greater than 12
// without overflowing on long runs.
func exceedsMonth(run string) bool {
	trimmed := strings.TrimLeft(run, "0")
	if len(trimmed) > 2 {
		return true
	}
	if trimmed == "" {
		return false
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return false
	}
	return n > maxMonthValue
}

// detectDays inserts every day token contained in line.
func detectDays(line string, c *Candidates) {
	for _, day := range DayTokens {
		if strings.Contains(line, day) {
			c.days.Add(day)
		}
	}
}

// detectMonths inserts every month token contained in line and, for each
// match, classifies all numeric runs of the whole line.
func detectMonths(line string, c *Candidates) {
	for _, month := range MonthTokens {
		if !strings.Contains(line, month) {
			continue
		}
		c.months.Add(month)
		for _, run := range NumericRuns(line) {
			switch n := len(run); {
			case n <= maxDateDigits:
				c.dates.Add(run)
			case n == yearDigits:
				c.years.Add(run)
			}
		}
	}
}

// detectYears inserts every four digit run.
func detectYears(line string, c *Candidates) {
	for _, run := range NumericRuns(line) {
		if len(run) == yearDigits {
			c.years.Add(run)
		}
	}
}

// detectFullDate inserts the parts of a full date triple, if the line is one.
func detectFullDate(line string, c *Candidates) {
	t, ok := FullDateTriple(line)
	if !ok {
		return
	}
	c.months.Add(t.Month)
	c.dates.Add(t.Date)
	c.years.Add(t.Year)
}
