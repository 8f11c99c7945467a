// Package common contains shared functionality for command handlers
package common

import (
	"errors"
	"io"

	"fjacquet/expense-insights/internal/container"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/models"
	"fjacquet/expense-insights/internal/report"
	"fjacquet/expense-insights/internal/validation"
)

// ErrNoInput is returned when a command needs --input and none was given.
var ErrNoInput = errors.New("an input CSV file is required (--input)")

// LoadTable reads and cleans the CSV at input.
func LoadTable(c *container.Container, input string) (models.Table, error) {
	if input == "" {
		return models.Table{}, ErrNoInput
	}
	if err := validation.IsValidInputFile(input); err != nil {
		return models.Table{}, err
	}
	table, rep, err := c.GetLoader().LoadFile(input)
	if err != nil {
		return models.Table{}, err
	}
	if len(rep.Dropped) > 0 {
		c.GetLogger().Warn("Some rows were dropped during cleaning",
			logging.F(logging.FieldInputFile, input),
			logging.F(logging.FieldDropped, len(rep.Dropped)))
	}
	return table, nil
}

// Render writes view to w in the named format.
func Render(c *container.Container, w io.Writer, view report.View, format string) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	return c.GetReportGenerator().Write(w, view, f)
}
