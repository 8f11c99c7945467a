// Package report renders analysis results as text tables, JSON, YAML or CSV.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/logging"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ParseFormat resolves a format name; "yml" is accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", &analyticserror.InvalidArgumentError{
			Argument: "format",
			Value:    name,
			Reason:   "must be one of text, json, yaml, csv",
		}
	}
}

// Generator renders views.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logger.WithField(logging.FieldComponent, "ReportGenerator")}
}

// Generate renders view in the given format.
func (g *Generator) Generate(view View, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Write(&buf, view, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders view to w.
func (g *Generator) Write(w io.Writer, view View, format Format) error {
	var err error
	switch format {
	case FormatText:
		err = g.writeText(w, view)
	case FormatJSON:
		err = g.writeJSON(w, view)
	case FormatYAML:
		err = g.writeYAML(w, view)
	case FormatCSV:
		err = g.writeCSV(w, view)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
	if err != nil {
		g.logger.WithError(err).Error("Failed to render report",
			logging.F(logging.FieldView, view.Name),
			logging.F("format", string(format)))
	}
	return err
}

func (g *Generator) writeJSON(w io.Writer, view View) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(view.Data); err != nil {
		return fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return nil
}

func (g *Generator) writeYAML(w io.Writer, view View) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(view.Data); err != nil {
		return fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return encoder.Close()
}

func (g *Generator) writeCSV(w io.Writer, view View) error {
	if view.Records == nil {
		return fmt.Errorf("view %q has no CSV form", view.Name)
	}
	if err := gocsv.Marshal(view.Records, w); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

func (g *Generator) writeText(w io.Writer, view View) error {
	var b strings.Builder
	b.WriteString(view.Title + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(view.Title))) + "\n")
	for _, note := range view.Notes {
		b.WriteString(note + "\n")
	}

	for _, table := range view.Tables {
		b.WriteString("\n")
		if table.Title != "" {
			b.WriteString(table.Title + "\n")
		}
		if len(table.Rows) == 0 {
			b.WriteString("(no rows)\n")
			continue
		}
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
		for _, row := range table.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("error formatting table: %w", err)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
