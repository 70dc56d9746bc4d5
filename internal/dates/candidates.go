package dates

import "strings"

// detector is one per-line heuristic.
type detector func(line string, c *Candidates)

// lineDetectors run over every line in this order.
var lineDetectors = []detector{
	detectDays,
	detectMonths,
	detectYears,
	detectFullDate,
}

// Candidates accumulates the date components found in one image's corpus.
//
// A Candidates value belongs to a single extraction run. Use NewCandidates,
// feed it lines with ScanLines, then read the frozen result with Components.
type Candidates struct {
	days   *OrderedSet
	dates  *OrderedSet
	months *OrderedSet
	years  *OrderedSet
}

// NewCandidates returns an empty accumulator.
func NewCandidates() *Candidates {
	return &Candidates{
		days:   NewOrderedSet(),
		dates:  NewOrderedSet(),
		months: NewOrderedSet(),
		years:  NewOrderedSet(),
	}
}

// ScanLine runs every detector over one lowercased line.
func (c *Candidates) ScanLine(line string) {
	for _, detect := range lineDetectors {
		detect(line, c)
	}
}

// ScanLines runs every detector over each line in order.
func (c *Candidates) ScanLines(lines []string) {
	for _, line := range lines {
		c.ScanLine(line)
	}
}

// Components returns a snapshot of the four collections.
func (c *Candidates) Components() Components {
	return Components{
		Day:   c.days.Values(),
		Date:  c.dates.Values(),
		Month: c.months.Values(),
		Year:  c.years.Values(),
	}
}

// Components holds the candidate tokens for one image. Each slice is ordered
// by discovery and free of duplicates.
type Components struct {
	Day   []string `json:"day" yaml:"day"`
	Date  []string `json:"date" yaml:"date"`
	Month []string `json:"month" yaml:"month"`
	Year  []string `json:"year" yaml:"year"`
}

// Map returns the components keyed by "day", "date", "month" and "year".
func (c Components) Map() map[string][]string {
	return map[string][]string{
		"day":   c.Day,
		"date":  c.Date,
		"month": c.Month,
		"year":  c.Year,
	}
}

// Empty reports whether no component was found.
func (c Components) Empty() bool {
	return len(c.Day) == 0 && len(c.Date) == 0 && len(c.Month) == 0 && len(c.Year) == 0
}

// SplitLines lowercases text and splits it on line feeds. Empty lines are
// kept.
func SplitLines(text string) []string {
	return strings.Split(strings.ToLower(text), "\n")
}

// ScanText is a convenience for running the detectors over raw text that has
// not been split or lowercased yet.
func ScanText(text string) Components {
	c := NewCandidates()
	c.ScanLines(SplitLines(text))
	return c.Components()
}
