package buildsys

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazesearch/build-web/pkg/config"
)

func renderProgress(t *testing.T, cfg *config.Config) string {
	t.Helper()

	var buf bytes.Buffer
	saved := progressOutput
	progressOutput = &buf
	defer func() { progressOutput = saved }()

	bar := (&Build{Config: cfg}).progressBar(100, "copying files")
	require.NoError(t, bar.Add(100))
	require.NoError(t, bar.Finish())
	return buf.String()
}

func TestProgressBarVisibility(t *testing.T) {
	t.Setenv("CI", "")

	console := &config.Config{}
	assert.NotEmpty(t, renderProgress(t, console))

	jsonLog := &config.Config{}
	jsonLog.Log.JSON = true
	assert.Empty(t, renderProgress(t, jsonLog))

	t.Setenv("CI", "true")
	assert.Empty(t, renderProgress(t, console))
}
