package rayverb

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWavRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	samples := make([]float32, 800)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/8000))
	}

	err := writeWav(path, [][]float32{samples}, 8000)
	require.NoError(t, err)

	decoded, sample_rate, err := ReadWav(path)
	require.NoError(t, err)
	require.Equal(t, 8000, sample_rate)
	require.Len(t, decoded, len(samples))

	for i := range samples {
		require.InDelta(t, float64(samples[i]), float64(decoded[i]), 1e-3)
	}
}

func TestSceneSaveMultiChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.wav")

	scene := NewScene()
	scene.AddSource(impulseSource(t, Vec3{Y: 1}, 8000, "impulse"))

	left := []float32{0, 0.25, -0.5, 1}
	right := []float32{1, -1, 0.5, 0}
	err := scene.Save(path, [][]float32{left, right})
	require.NoError(t, err)

	// the first channel survives the interleaving
	decoded, sample_rate, err := ReadWav(path)
	require.NoError(t, err)
	require.Equal(t, 8000, sample_rate)
	require.Len(t, decoded, 4)
	for i := range left {
		require.InDelta(t, float64(left[i]), float64(decoded[i]), 1e-3)
	}
}

func TestSceneSaveWithoutSources(t *testing.T) {
	scene := NewScene()
	err := scene.Save(filepath.Join(t.TempDir(), "empty.wav"), [][]float32{{0}})
	require.ErrorIs(t, err, ErrBadSampleRate)
}

func TestSourceSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "click.wav")

	src, err := NewSourceFromSamples([]float32{1, -0.5, 0.25}, 16000, Vec3{}, "click")
	require.NoError(t, err)
	require.NoError(t, src.Save(path))

	decoded, sample_rate, err := ReadWav(path)
	require.NoError(t, err)
	require.Equal(t, 16000, sample_rate)
	require.Len(t, decoded, 3)
}

func TestClipToPCM16(t *testing.T) {
	require.Equal(t, 32767, clipToPCM16(1))
	require.Equal(t, 32767, clipToPCM16(2))
	require.Equal(t, -32767, clipToPCM16(-1))
	require.Equal(t, -32767, clipToPCM16(-2))
	require.Equal(t, 0, clipToPCM16(0))
}
