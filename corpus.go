package rayverb

import (
	"errors"
	"log"
	"math"
	"math/rand"
	"path/filepath"
	"sort"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// Corpus is an isolated speech corpus laid out as one directory per
// speaker, each containing WAV clips. Listing goes through the TileDB
// VFS so a corpus can be enumerated on local disk or an object store;
// clip decoding currently expects local paths.
//
// Speakers are handed out without replacement until the corpus is
// exhausted, at which point it resets.
type Corpus struct {
	Directory string

	config   *tiledb.Config
	ctx      *tiledb.Context
	vfs      *tiledb.VFS
	speakers []string
	consumed []string
}

// OpenCorpus enumerates the speaker directories under the given uri.
func OpenCorpus(uri string, config_uri string) (*Corpus, error) {
	config, err := loadConfig(config_uri)
	if err != nil {
		return nil, err
	}

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		config.Free()
		return nil, err
	}

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		ctx.Free()
		config.Free()
		return nil, err
	}

	dirs, _, err := vfs.List(uri)
	if err != nil {
		vfs.Free()
		ctx.Free()
		config.Free()
		return nil, err
	}
	sort.Strings(dirs)

	if len(dirs) == 0 {
		vfs.Free()
		ctx.Free()
		config.Free()
		return nil, errors.Join(ErrCorpusEmpty, errors.New("uri: "+uri))
	}

	corpus := &Corpus{
		Directory: uri,
		config:    config,
		ctx:       ctx,
		vfs:       vfs,
		speakers:  dirs,
	}

	return corpus, nil
}

// Close releases the open tiledb handles.
func (c *Corpus) Close() {
	c.vfs.Free()
	c.ctx.Free()
	c.config.Free()
}

// Speakers draws num distinct speakers without replacement, resetting the
// corpus when the remaining pool runs dry.
func (c *Corpus) Speakers(num int) ([]string, error) {
	if num > len(c.speakers)+len(c.consumed) {
		return nil, errors.Join(ErrCorpusEmpty,
			errors.New("corpus smaller than the requested number of speakers"))
	}
	if num > len(c.speakers) {
		log.Println("Out of unique speakers; resetting corpus.")
		c.Reset()
	}

	rand.Shuffle(len(c.speakers), func(i, j int) {
		c.speakers[i], c.speakers[j] = c.speakers[j], c.speakers[i]
	})

	picked := make([]string, num)
	copy(picked, c.speakers[:num])
	c.consumed = append(c.consumed, picked...)
	c.speakers = c.speakers[num:]

	return picked, nil
}

// Reset returns all consumed speakers to the pool.
func (c *Corpus) Reset() {
	c.speakers = append(c.speakers, c.consumed...)
	c.consumed = nil
	sort.Strings(c.speakers)
}

// Sources builds one Source per speaker directory by concatenating the
// speaker's clips in name order until the requested duration of speech is
// collected, placing each at the corresponding location. The signal is
// truncated to duration seconds at the clip sample rate.
func (c *Corpus) Sources(speakers []string, locations []Vec3, duration float64) ([]*Source, error) {
	sources := make([]*Source, 0, len(speakers))

	for index, speaker := range speakers {
		clips, err := c.clips(speaker)
		if err != nil {
			return nil, err
		}

		var (
			data        []float32
			sample_rate int
			last_clip   string
		)
		for _, clip := range clips {
			samples, rate, err := ReadWav(clip)
			if err != nil {
				return nil, err
			}
			if sample_rate == 0 {
				sample_rate = rate
			}
			data = append(data, samples...)
			last_clip = clip

			if float64(len(data)) >= duration*float64(sample_rate) {
				break
			}
		}
		if len(data) == 0 {
			return nil, errors.Join(ErrCorpusClips, errors.New("speaker: "+speaker))
		}

		max_samples := int(math.Round(duration * float64(sample_rate)))
		if len(data) > max_samples {
			data = data[:max_samples]
		}

		name := filepath.Base(speaker) + "-" + trimWavExt(filepath.Base(last_clip))
		source, err := NewSourceFromSamples(data, sample_rate, locations[index], name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	return sources, nil
}

// clips lists the speaker's WAV files in sorted order, recursing over any
// chapter subdirectories.
func (c *Corpus) clips(speaker string) ([]string, error) {
	items, err := c.trawl("*.wav", speaker, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.Join(ErrCorpusClips, errors.New("speaker: "+speaker))
	}
	sort.Strings(items)

	return items, nil
}

// trawl recursively gathers files matching pattern beneath uri. The
// basename is only matched with the pattern, eg ("*.wav",
// "s12-b3-0041.wav").
func (c *Corpus) trawl(pattern string, uri string, items []string) ([]string, error) {
	dirs, files, err := c.vfs.List(uri)
	if err != nil {
		return nil, err
	}

	// check files for the matching pattern
	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			return nil, err
		}
		if match {
			items = append(items, file)
		}
	}

	// recurse over every directory
	for _, dir := range dirs {
		items, err = c.trawl(pattern, dir, items)
		if err != nil {
			return nil, err
		}
	}

	return items, nil
}

func trimWavExt(name string) string {
	ext := filepath.Ext(name)
	if ext == ".wav" {
		return name[:len(name)-len(ext)]
	}
	return name
}
