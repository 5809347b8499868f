package serial

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	assert.Equal(t, "/dev/ttyUSB0", cfg.Device)
	assert.Equal(t, DefaultBaud, cfg.Baud)
	assert.Equal(t, 100, cfg.ReadTimeout)
}

func TestOpenNilConfig(t *testing.T) {
	_, err := Open(nil)
	require.ErrorIs(t, err, ErrNilConfig)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open(DefaultConfig("/nonexistent/tty"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/tty")
}

func TestIdleRead(t *testing.T) {
	n, err := idleRead(0, io.EOF)
	assert.Zero(t, n)
	assert.NoError(t, err)

	n, err = idleRead(3, io.EOF)
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, io.EOF)

	broken := errors.New("device gone")
	_, err = idleRead(0, broken)
	assert.ErrorIs(t, err, broken)
}
