package meadow

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerRoutesLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut, "grass", false)

	l.Debugf("hidden %d", 1)
	l.Infof("built %d chunks", 4)
	l.Warnf("skipped %s", "(1,2)")
	l.Errorf("boom")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[grass] INFO: built 4 chunks")
	assert.Contains(t, errOut.String(), "[grass] WARN: skipped (1,2)")
	assert.Contains(t, errOut.String(), "[grass] ERROR: boom")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	assert.Contains(t, out.String(), "[grass] DEBUG: shown 2")
}

func TestDefaultLoggerWithoutPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewLoggerTo(&out, &out, "", false)
	l.Infof("plain")
	assert.Contains(t, out.String(), "INFO: plain")
	assert.NotContains(t, out.String(), "[")
}

func TestAppLoggerFallsBackToNop(t *testing.T) {
	var nilApp *App
	require.NotNil(t, nilApp.Logger())

	app := NewAppBuilder().Build()
	l := app.Logger()
	require.NotNil(t, l)
	assert.False(t, l.DebugEnabled())
	l.Errorf("ignored")
}

func TestLoggingModuleInstallsDefaultLogger(t *testing.T) {
	app := NewAppBuilder().
		UseModule(LoggingModule{Prefix: "test", Debug: true}).
		Build()

	l, ok := app.Logger().(*DefaultLogger)
	require.True(t, ok)
	assert.True(t, l.DebugEnabled())
}

func TestLoggingModuleInstallsCustomLogger(t *testing.T) {
	var out bytes.Buffer
	custom := NewLoggerTo(&out, &out, "custom", false)
	app := NewAppBuilder().
		UseModule(LoggingModule{Logger: custom, Debug: true}).
		Build()

	app.Logger().Debugf("via %s", "resource")
	assert.Contains(t, out.String(), "[custom] DEBUG: via resource")

	app.Commands().Logger().Infof("from commands")
	assert.Contains(t, out.String(), "[custom] INFO: from commands")
}
