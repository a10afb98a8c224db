package rayverb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func impulseSource(t *testing.T, location Vec3, sampleRate int, name string) *Source {
	t.Helper()
	src, err := NewSourceFromSamples([]float32{1}, sampleRate, location, name)
	require.NoError(t, err)
	return src
}

func TestSceneSampleRateTracksMax(t *testing.T) {
	scene := NewScene()
	require.Equal(t, 0, scene.SampleRate())

	scene.AddSource(impulseSource(t, Vec3{}, 8000, "a"))
	require.Equal(t, 8000, scene.SampleRate())

	scene.AddSource(impulseSource(t, Vec3{}, 16000, "b"))
	require.Equal(t, 16000, scene.SampleRate())

	// a slower source never lowers the effective rate
	scene.AddSource(impulseSource(t, Vec3{}, 4000, "c"))
	require.Equal(t, 16000, scene.SampleRate())
}

func TestSceneClearPreservesTriangles(t *testing.T) {
	scene := NewScene()
	scene.AddSurfaces([]Triangle{
		NewTriangle(Vec3{}, Vec3{X: 1}, Vec3{Y: 1}),
		NewTriangle(Vec3{Z: 1}, Vec3{X: 1, Z: 1}, Vec3{Y: 1, Z: 1}),
	})
	scene.AddSource(impulseSource(t, Vec3{}, 8000, "a"))
	scene.AddReceiver(NewReceiver(Vec3{}, "r"))

	scene.Clear()

	require.Len(t, scene.Triangles, 2)
	require.Empty(t, scene.Sources)
	require.Empty(t, scene.Receivers)
	require.Equal(t, 0, scene.SampleRate())
}

func TestSceneAddOrderIsPreserved(t *testing.T) {
	scene := NewScene()
	scene.AddReceivers([]*Receiver{
		NewReceiver(Vec3{X: 1}, "first"),
		NewReceiver(Vec3{X: 2}, "second"),
	})

	require.Equal(t, "first", scene.Receivers[0].Name)
	require.Equal(t, "second", scene.Receivers[1].Name)
}
