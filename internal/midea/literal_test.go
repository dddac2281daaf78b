package midea

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferecasa/ac-controller/internal/model"
)

func writeCapture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadLiteralSource(t *testing.T) {
	path := writeCapture(t, `{
		"carrier_hz": 38000,
		"on":  [4424, 4424, 553, 1659, 553],
		"off": [4424, 4424, 553, 553, 553, 0]
	}`)

	src, err := LoadLiteralSource(path)
	require.NoError(t, err)

	on, err := src.Train(model.Command{Power: true})
	require.NoError(t, err)
	assert.Equal(t, 38000, on.CarrierHz)
	// Odd capture gets padded with a zero space to stay in whole pairs.
	require.Len(t, on.Pairs, 3)
	assert.Equal(t, Pair{553 * time.Microsecond, 0}, on.Pairs[2])

	off, err := src.Train(model.Command{Power: false})
	require.NoError(t, err)
	require.Len(t, off.Pairs, 3)
	assert.Equal(t, Pair{4424 * time.Microsecond, 4424 * time.Microsecond}, off.Pairs[0])
}

func TestLoadLiteralSource_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad json", `{`},
		{"missing carrier", `{"on": [1, 2], "off": [1, 2]}`},
		{"empty train", `{"carrier_hz": 38000, "on": [], "off": [1, 2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLiteralSource(writeCapture(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadLiteralSource_MissingFile(t *testing.T) {
	_, err := LoadLiteralSource(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
