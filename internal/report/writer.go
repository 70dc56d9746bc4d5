package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Write.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("report.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("report.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Validate checks encoded report JSON against the report schema.
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	return nil
}

// Write renders r to w in the given format.
func Write(w io.Writer, r *Report, format string) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML, "yml":
		return WriteYAML(w, r)
	case FormatText, "txt":
		return WriteText(w, r)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteJSON writes r as indented JSON after validating it.
func WriteJSON(w io.Writer, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := Validate(data); err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteYAML writes r as YAML.
func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteText writes one block per image: the image name, its components and
// a separator line.
func WriteText(w io.Writer, r *Report) error {
	var b strings.Builder
	for _, e := range r.Images {
		b.WriteString(e.Image)
		b.WriteByte('\n')
		if e.Error != "" {
			fmt.Fprintf(&b, "error: %s\n", e.Error)
		} else if e.Components != nil {
			c := e.Components
			fmt.Fprintf(&b, "day:   %s\n", formatTokens(c.Day))
			fmt.Fprintf(&b, "date:  %s\n", formatTokens(c.Date))
			fmt.Fprintf(&b, "month: %s\n", formatTokens(c.Month))
			fmt.Fprintf(&b, "year:  %s\n", formatTokens(c.Year))
		}
		for _, v := range e.Variants {
			fmt.Fprintf(&b, "--- %s ---\n%s\n", v.Title, strings.TrimRight(v.Text, "\n"))
		}
		b.WriteString("__________\n")
	}
	fmt.Fprintf(&b, "%d images, %d succeeded, %d failed\n",
		r.Summary.Total, r.Summary.Succeeded, r.Summary.Failed)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func formatTokens(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = "'" + t + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
