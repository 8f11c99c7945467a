package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/config"
	"fjacquet/expense-insights/internal/container"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) (*container.Container, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	c, err := container.NewContainerWithLogger(config.Default(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, logger
}

func TestLoadTable(t *testing.T) {
	c, logger := newTestContainer(t)

	_, err := LoadTable(c, "")
	assert.ErrorIs(t, err, ErrNoInput)

	path := filepath.Join(t.TempDir(), "expenses.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Amount,Category,Description\n2024-01-01,5,food,\n2024-01-02,abc,food,\n"), 0600))

	table, err := LoadTable(c, path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.True(t, logger.HasEntry("WARN", "Some rows were dropped during cleaning"))

	_, err = LoadTable(c, filepath.Dir(path))
	assert.ErrorIs(t, err, analyticserror.ErrInvalidArgument)
}

func TestRender(t *testing.T) {
	c, _ := newTestContainer(t)
	view := report.View{Name: "x", Title: "Title", Data: map[string]int{"a": 1}}

	var buf bytes.Buffer
	require.NoError(t, Render(c, &buf, view, "json"))
	assert.JSONEq(t, `{"a":1}`, buf.String())

	err := Render(c, &buf, view, "pdf")
	assert.ErrorIs(t, err, analyticserror.ErrInvalidArgument)
}
