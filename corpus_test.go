package rayverb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildCorpusDir lays out a tiny corpus: one directory per speaker, each
// holding a couple of short clips.
func buildCorpusDir(t *testing.T, speakers int) string {
	t.Helper()
	root := t.TempDir()

	clip := make([]float32, 400) // 50ms at 8kHz
	for i := range clip {
		clip[i] = float32(i%7) / 7
	}

	for s := 0; s < speakers; s++ {
		dir := filepath.Join(root, "s"+string(rune('a'+s)))
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, writeWav(filepath.Join(dir, "0001.wav"), [][]float32{clip}, 8000))
		require.NoError(t, writeWav(filepath.Join(dir, "0002.wav"), [][]float32{clip}, 8000))
	}

	return root
}

func TestOpenCorpusEmpty(t *testing.T) {
	_, err := OpenCorpus(t.TempDir(), "")
	require.ErrorIs(t, err, ErrCorpusEmpty)
}

func TestCorpusSpeakersWithoutReplacement(t *testing.T) {
	corpus, err := OpenCorpus(buildCorpusDir(t, 4), "")
	require.NoError(t, err)
	defer corpus.Close()

	first, err := corpus.Speakers(2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := corpus.Speakers(2)
	require.NoError(t, err)

	// the two draws partition the corpus
	seen := map[string]bool{}
	for _, s := range append(first, second...) {
		require.False(t, seen[s], "speaker %s drawn twice", s)
		seen[s] = true
	}
	require.Len(t, seen, 4)

	// a further draw resets the pool instead of failing
	third, err := corpus.Speakers(2)
	require.NoError(t, err)
	require.Len(t, third, 2)
}

func TestCorpusSpeakersTooMany(t *testing.T) {
	corpus, err := OpenCorpus(buildCorpusDir(t, 2), "")
	require.NoError(t, err)
	defer corpus.Close()

	_, err = corpus.Speakers(5)
	require.ErrorIs(t, err, ErrCorpusEmpty)
}

func TestCorpusSources(t *testing.T) {
	corpus, err := OpenCorpus(buildCorpusDir(t, 2), "")
	require.NoError(t, err)
	defer corpus.Close()

	speakers, err := corpus.Speakers(2)
	require.NoError(t, err)

	locations := []Vec3{{X: 1, Y: 1, Z: 1.7}, {X: 2, Y: 3, Z: 1.6}}
	sources, err := corpus.Sources(speakers, locations, 0.075)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	for i, source := range sources {
		require.Equal(t, 8000, source.SampleRate)
		require.Equal(t, locations[i], source.Location)
		// 75ms requested from 50ms clips: concatenated then truncated
		require.Len(t, source.Signal, 600)
	}
}
