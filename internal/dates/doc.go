// Package dates classifies lowercased OCR text into candidate date components.
//
// Four heuristics run over every line of a corpus and feed one Candidates
// value per image:
//
//   - Day: any day name or abbreviation found as a substring
//   - Month: any month name or abbreviation found as a substring, plus every
//     numeric run on the same line (1-3 digits as a date, 4 digits as a year)
//   - Year: any numeric run of exactly four digits
//   - Full date: a line with exactly three numeric runs, read as
//     date/month/year when the first value exceeds 12 and month/date/year
//     otherwise
//
// # Matching Rules
//
// Vocabulary matching is plain substring matching against already lowercased
// text, so "sun" matches inside "sunshine". Numeric runs are maximal sequences
// of ASCII digits; every other character separates runs. Tokens are stored as
// found: "07" stays "07" and "jan" stays distinct from "january".
//
// # Ordering and Uniqueness
//
// Each of the four collections is an OrderedSet. The first insertion of a
// token fixes its position and later duplicates are dropped, so scanning the
// same lines twice yields the same Components.
//
// # Ambiguity
//
// Nothing here resolves a single calendar date. A number may appear as both a
// date and a year when different lines classify it differently, and triples
// whose first two values are both 12 or less default to month-first order.
package dates
