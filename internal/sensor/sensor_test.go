package sensor

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkRecorder struct {
	readings []Reading
	averages []Reading
	samples  []int
	failures []int
}

func (s *sinkRecorder) Reading(r Reading) { s.readings = append(s.readings, r) }

func (s *sinkRecorder) Average(avg Reading, n int) {
	s.averages = append(s.averages, avg)
	s.samples = append(s.samples, n)
}

func (s *sinkRecorder) Failure(consecutive int) { s.failures = append(s.failures, consecutive) }

// stubFiles points readFile at an in-memory sysfs.
func stubFiles(t *testing.T, files map[string]string) {
	t.Helper()
	prev := readFile
	readFile = func(path string) ([]byte, error) {
		for suffix, content := range files {
			if strings.HasSuffix(path, suffix) {
				return []byte(content), nil
			}
		}
		return nil, errors.New("no such file")
	}
	t.Cleanup(func() { readFile = prev })
}

func TestSample_Reading(t *testing.T) {
	stubFiles(t, map[string]string{
		"in_temp_input":             "23400\n",
		"in_humidityrelative_input": "55200\n",
	})

	sink := &sinkRecorder{}
	s := NewService("/sys/bus/iio/devices/iio:device0", 30*time.Second, 10, sink)
	s.Sample()

	require.Len(t, sink.readings, 1)
	assert.InDelta(t, 23.4, sink.readings[0].Temperature, 0.001)
	assert.InDelta(t, 55.2, sink.readings[0].Humidity, 0.001)
	assert.Empty(t, sink.failures)
	assert.Empty(t, sink.averages)
}

func TestSample_AverageOnFullBuffer(t *testing.T) {
	temp := 20000
	files := map[string]string{"in_humidityrelative_input": "50000"}
	stubFiles(t, files)

	sink := &sinkRecorder{}
	s := NewService("dev", time.Second, 3, sink)

	for i := 0; i < 3; i++ {
		files["in_temp_input"] = fmt.Sprintf("%d", temp+i*1000) // 20, 21, 22
		s.Sample()
	}

	require.Len(t, sink.averages, 1)
	assert.InDelta(t, 21.0, sink.averages[0].Temperature, 0.001)
	assert.Equal(t, []int{3}, sink.samples)

	// Buffer restarts after an average; the next sample does not emit one.
	s.Sample()
	assert.Len(t, sink.averages, 1)
}

func TestSample_OutOfRange(t *testing.T) {
	stubFiles(t, map[string]string{
		"in_temp_input":             "95000", // 95°C, beyond the sensor's limits
		"in_humidityrelative_input": "50000",
	})

	sink := &sinkRecorder{}
	s := NewService("dev", time.Second, 3, sink)
	s.Sample()

	assert.Empty(t, sink.readings)
	assert.Equal(t, []int{1}, sink.failures)
}

func TestSample_ConsecutiveFailuresAndRecovery(t *testing.T) {
	files := map[string]string{}
	stubFiles(t, files)

	sink := &sinkRecorder{}
	s := NewService("dev", time.Second, 10, sink)

	for i := 0; i < maxConsecutiveFailures; i++ {
		s.Sample()
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, sink.failures)

	// A good read resets the counter.
	files["in_temp_input"] = "22000"
	files["in_humidityrelative_input"] = "45000"
	s.Sample()
	require.Len(t, sink.readings, 1)

	delete(files, "in_temp_input")
	s.Sample()
	assert.Equal(t, 1, sink.failures[len(sink.failures)-1])
}

func TestSample_MalformedValue(t *testing.T) {
	stubFiles(t, map[string]string{
		"in_temp_input":             "not-a-number",
		"in_humidityrelative_input": "50000",
	})

	sink := &sinkRecorder{}
	s := NewService("dev", time.Second, 3, sink)
	s.Sample()

	assert.Empty(t, sink.readings)
	assert.Len(t, sink.failures, 1)
}

func TestConfigure_ResizesAndClears(t *testing.T) {
	stubFiles(t, map[string]string{
		"in_temp_input":             "20000",
		"in_humidityrelative_input": "50000",
	})

	sink := &sinkRecorder{}
	s := NewService("dev", 30*time.Second, 3, sink)

	s.Sample()
	s.Sample()
	s.Configure(10*time.Second, 2)
	assert.Equal(t, 10*time.Second, s.currentInterval())

	// Old partial fill was dropped; two fresh samples fill the new buffer.
	s.Sample()
	assert.Empty(t, sink.averages)
	s.Sample()
	assert.Len(t, sink.averages, 1)
	assert.Equal(t, []int{2}, sink.samples)
}
