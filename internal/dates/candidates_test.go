package dates

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCandidates_SpecExamples(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Components
	}{
		{
			name: "month with date and year",
			line: "event on 15 march 2024",
			want: Components{
				Day:   []string{},
				Date:  []string{"15"},
				Month: []string{"march", "mar"},
				Year:  []string{"2024"},
			},
		},
		{
			name: "ambiguous triple is month first",
			line: "07 04 2023",
			want: Components{
				Day:   []string{},
				Date:  []string{"04"},
				Month: []string{"07"},
				Year:  []string{"2023"},
			},
		},
		{
			name: "unambiguous triple is date first",
			line: "25 04 2023",
			want: Components{
				Day:   []string{},
				Date:  []string{"25"},
				Month: []string{"04"},
				Year:  []string{"2023"},
			},
		},
		{
			name: "seven digit run is ignored",
			line: "call 5551234 now",
			want: Components{
				Day:   []string{},
				Date:  []string{},
				Month: []string{},
				Year:  []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCandidates()
			c.ScanLine(tt.line)
			if got := c.Components(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCandidates_DayTokenOnceAcrossLines(t *testing.T) {
	lines := []string{
		"see you monday!",
		"",
		"monday monday",
		"see you monday!",
	}
	c := NewCandidates()
	c.ScanLines(lines)

	count := 0
	for _, d := range c.Components().Day {
		if d == "monday" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("monday recorded %d times, want 1", count)
	}
}

func TestCandidates_MonthAndTripleOnSameLine(t *testing.T) {
	c := NewCandidates()
	c.ScanLine("jan 5 - feb 10, 2024")

	got := c.Components()
	want := Components{
		Day:   []string{},
		Date:  []string{"5", "10"},
		Month: []string{"jan", "feb", "5"},
		Year:  []string{"2024"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCandidates_DiscoveryOrderAcrossLines(t *testing.T) {
	c := NewCandidates()
	c.ScanLines([]string{
		"friday 2025",
		"saturday 2024",
		"friday 2024",
	})

	got := c.Components()
	if want := []string{"friday", "fri", "saturday", "sat"}; !reflect.DeepEqual(got.Day, want) {
		t.Errorf("days: got %v, want %v", got.Day, want)
	}
	if want := []string{"2025", "2024"}; !reflect.DeepEqual(got.Year, want) {
		t.Errorf("years: got %v, want %v", got.Year, want)
	}
}

func TestCandidates_SameNumberInDatesAndYears(t *testing.T) {
	c := NewCandidates()
	c.ScanLines([]string{
		"june 2024",
		"2024 1 9",
	})

	got := c.Components()
	if !reflect.DeepEqual(got.Year, []string{"2024", "9"}) {
		t.Errorf("years: got %v", got.Year)
	}
	if !reflect.DeepEqual(got.Date, []string{"2024"}) {
		t.Errorf("dates: got %v", got.Date)
	}
	if !reflect.DeepEqual(got.Month, []string{"june", "jun", "1"}) {
		t.Errorf("months: got %v", got.Month)
	}
}

func TestCandidates_Idempotent(t *testing.T) {
	lines := SplitLines("Grand Opening\nSaturday, March 9th 2024\n03/09/2024\nDoors 7pm\n")

	once := NewCandidates()
	once.ScanLines(lines)

	twice := NewCandidates()
	twice.ScanLines(lines)
	twice.ScanLines(lines)

	if !reflect.DeepEqual(once.Components(), twice.Components()) {
		t.Errorf("second scan changed result:\nonce:  %+v\ntwice: %+v", once.Components(), twice.Components())
	}
}

func TestScanText_EmptyInput(t *testing.T) {
	got := ScanText("")
	if !got.Empty() {
		t.Fatalf("expected no components, got %+v", got)
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"day":[],"date":[],"month":[],"year":[]}`
	if string(data) != want {
		t.Errorf("JSON: got %s, want %s", data, want)
	}
}

func TestScanText_Lowercases(t *testing.T) {
	got := ScanText("SUNDAY\nDEC 25")

	if !reflect.DeepEqual(got.Day, []string{"sunday", "sun"}) {
		t.Errorf("days: got %v", got.Day)
	}
	if !reflect.DeepEqual(got.Month, []string{"dec"}) {
		t.Errorf("months: got %v", got.Month)
	}
	if !reflect.DeepEqual(got.Date, []string{"25"}) {
		t.Errorf("dates: got %v", got.Date)
	}
}

func TestComponents_Map(t *testing.T) {
	c := Components{
		Day:   []string{"sat"},
		Date:  []string{"9"},
		Month: []string{"mar"},
		Year:  []string{"2024"},
	}
	m := c.Map()
	if len(m) != 4 {
		t.Fatalf("expected 4 keys, got %d", len(m))
	}
	for key, want := range map[string]string{"day": "sat", "date": "9", "month": "mar", "year": "2024"} {
		if got := m[key]; len(got) != 1 || got[0] != want {
			t.Errorf("%s: got %v, want [%s]", key, got, want)
		}
	}
}
