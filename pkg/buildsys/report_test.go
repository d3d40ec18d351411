package buildsys_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazesearch/build-web/pkg/buildsys"
	"github.com/mazesearch/build-web/pkg/buildsys/buildsystest"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, buildsys.ExitCode(nil))
	assert.Equal(t, 1, buildsys.ExitCode(eris.New("plain")))
	assert.Equal(t, 1, buildsys.ExitCode(buildsys.Fatal("x", "", "", nil)))
	assert.Equal(t, 101, buildsys.ExitCode(buildsys.ExitStatus(101)))
	assert.Equal(t, 1, buildsys.ExitCode(buildsys.ExitStatus(0)))
	assert.Equal(t, 42, buildsys.ExitCode(fmt.Errorf("while bundling: %w", buildsys.ExitStatus(42))))
}

func TestStepErrorMessage(t *testing.T) {
	cause := eris.New("permission denied")
	err := buildsys.Fatal("couldn't copy file, ", "missing index.html?", "", cause)

	assert.Equal(t, "couldn't copy file, missing index.html?: permission denied", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.False(t, err.Silent())

	assert.Equal(t, "exited with status 3", buildsys.ExitStatus(3).Error())
	assert.True(t, buildsys.ExitStatus(3).Silent())
}

func TestReportError(t *testing.T) {
	rec := &buildsystest.Recorder{}

	buildsys.ReportError(rec, nil)
	buildsys.ReportError(rec, buildsys.ExitStatus(2))
	assert.Empty(t, rec.Entries)

	buildsys.ReportError(rec, buildsys.Fatal("no wasm file ", "in expected directory", "missing target/*.wasm", nil))
	buildsys.ReportError(rec, buildsys.Fatal("couldn't copy file, ", "see error", "", eris.New("disk full")))
	buildsys.ReportError(rec, eris.New("unknown flag: --bogus"))

	assert.Equal(t, []buildsystest.Entry{
		{Severity: buildsys.SeverityError, Summary: "no wasm file ", Detail: "in expected directory", Hint: "missing target/*.wasm"},
		{Severity: buildsys.SeverityError, Summary: "couldn't copy file, ", Detail: "see error", Hint: "disk full"},
		{Severity: buildsys.SeverityError, Summary: "unknown flag: --bogus"},
	}, rec.Entries)
}

func TestReportWrappedError(t *testing.T) {
	rec := &buildsystest.Recorder{}

	buildsys.ReportError(rec, fmt.Errorf("while bundling: %w", buildsys.ExitStatus(2)))
	assert.Empty(t, rec.Entries)

	wrapped := fmt.Errorf("while bundling: %w", buildsys.Fatal("no wasm file ", "in expected directory", "missing target/*.wasm", nil))
	buildsys.ReportError(rec, wrapped)

	assert.Equal(t, []buildsystest.Entry{
		{Severity: buildsys.SeverityError, Summary: "no wasm file ", Detail: "in expected directory", Hint: "missing target/*.wasm"},
	}, rec.Entries)
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	reporter := buildsys.NewLogReporter(&logger)

	reporter.Report(buildsys.SeverityWarning, "failed to clean, ", "see cargo error:", "lock held")
	reporter.Report(buildsys.SeverityStep, "compiling wasm", "", "")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var evt map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &evt))
	assert.Equal(t, "warn", evt["level"])
	assert.Equal(t, "warning", evt["severity"])
	assert.Equal(t, "failed to clean, ", evt["message"])
	assert.Equal(t, "see cargo error:", evt["detail"])
	assert.Equal(t, "lock held", evt["hint"])

	evt = nil
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &evt))
	assert.Equal(t, "info", evt["level"])
	assert.Equal(t, "step", evt["severity"])
	assert.NotContains(t, evt, "detail")
	assert.NotContains(t, evt, "hint")
}
