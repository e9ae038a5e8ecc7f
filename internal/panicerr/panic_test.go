package panicerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/pohlang/internal/panicerr"
)

func Test_Recover_PassesThroughNormalError(t *testing.T) {
	sentinel := errors.New("boom")
	err := panicerr.Recover("worker", func() error { return sentinel })
	assert.Equal(t, sentinel, err)
}

func Test_Recover_PassesThroughNilError(t *testing.T) {
	err := panicerr.Recover("worker", func() error { return nil })
	assert.NoError(t, err)
}

func Test_Recover_CatchesPanicAsError(t *testing.T) {
	err := panicerr.Recover("worker", func() error {
		panic("kaboom")
	})
	require.Error(t, err)
	assert.True(t, panicerr.IsPanic(err))
	assert.Contains(t, err.Error(), "worker")
	assert.Contains(t, err.Error(), "kaboom")
}

func Test_PanicStack_EmptyForNonPanicError(t *testing.T) {
	assert.Equal(t, "", panicerr.PanicStack(errors.New("plain")))
}

func Test_PanicStack_NonEmptyForPanic(t *testing.T) {
	err := panicerr.Recover("worker", func() error {
		panic("trace me")
	})
	assert.NotEmpty(t, panicerr.PanicStack(err))
}
