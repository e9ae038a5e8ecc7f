package logio_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/pohlang/internal/logio"
)

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

func Test_Printf_WritesLeveledLine(t *testing.T) {
	var buf bytes.Buffer
	log := logio.Logger{}
	log.SetOutput(nopWriteCloser{&buf})

	log.Printf("INFO", "starting %s", "up")
	assert.Equal(t, "INFO: starting up\n", buf.String())
}

func Test_Errorf_SetsNonZeroExitCode(t *testing.T) {
	var buf bytes.Buffer
	log := logio.Logger{}
	log.SetOutput(nopWriteCloser{&buf})

	assert.Equal(t, 0, log.ExitCode())
	log.Errorf("boom: %v", "bad")
	assert.Contains(t, buf.String(), "ERROR: boom: bad")
	assert.Equal(t, 1, log.ExitCode())
}

func Test_ErrorIf_NilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	log := logio.Logger{}
	log.SetOutput(nopWriteCloser{&buf})

	log.ErrorIf(nil)
	assert.Equal(t, "", buf.String())
	assert.Equal(t, 0, log.ExitCode())
}

func Test_Leveledf_ReturnsBoundPrintf(t *testing.T) {
	var buf bytes.Buffer
	log := logio.Logger{}
	log.SetOutput(nopWriteCloser{&buf})

	trace := log.Leveledf("TRACE")
	trace("step %d", 1)
	assert.Equal(t, "TRACE: step 1\n", buf.String())
}
