package rayverb

import (
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// TraceTensor is the channels x samples amplitude tensor of a traced
// mixture, flattened row-major for storage. The array uses the channel
// and sample indices as dense dimensions.
type TraceTensor struct {
	Channel   []uint64  `tiledb:"dtype=uint64,ftype=dim" filters:"zstd(level=16)"`
	Sample    []uint64  `tiledb:"dtype=uint64,ftype=dim" filters:"zstd(level=16)"`
	Amplitude []float32 `tiledb:"dtype=float32,ftype=attr" filters:"bysh,zstd(level=16)"`
}

// SpeakerLabel ties a corpus speaker to the location their source was
// placed at for a mixture.
type SpeakerLabel struct {
	Name     string    `json:"name"`
	Location []float64 `json:"location"`
}

// MixtureLabels carries the ground-truth labels of a traced mixture;
// stored as array metadata beside the trace tensor and as a JSON
// sidecar.
type MixtureLabels struct {
	SceneFile   string         `json:"scene_file"`
	SampleRate  int            `json:"sample_rate"`
	NumChannels int            `json:"num_channels"`
	ArrayOrigin []float64      `json:"mic_array_origin"`
	Steering    []float64      `json:"mic_steering"`
	Speakers    []SpeakerLabel `json:"speakers"`
}

// mixture_tiledb_array establishes the schema and dense array on
// disk/object store for a channels x samples trace tensor.
func mixture_tiledb_array(file_uri string, ctx *tiledb.Context, nchannels, nsamples uint64) error {
	// an arbitrary choice; keeps tiles at a manageable size for long traces
	tile_sz := uint64(math.Min(float64(500000), float64(nsamples)))

	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return errors.Join(ErrCreateMixTdb, err)
	}
	defer domain.Free()

	chan_dim, err := tiledb.NewDimension(ctx, "Channel", tiledb.TILEDB_UINT64, []uint64{0, nchannels - uint64(1)}, nchannels)
	if err != nil {
		return errors.Join(ErrCreateMixTdb, err)
	}
	defer chan_dim.Free()

	samp_dim, err := tiledb.NewDimension(ctx, "Sample", tiledb.TILEDB_UINT64, []uint64{0, nsamples - uint64(1)}, tile_sz)
	if err != nil {
		return errors.Join(ErrCreateMixTdb, err)
	}
	defer samp_dim.Free()

	err = domain.AddDimensions(chan_dim, samp_dim)
	if err != nil {
		return errors.Join(ErrCreateMixTdb, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_DENSE)
	if err != nil {
		return errors.Join(ErrCreateMixTdb, err)
	}
	defer schema.Free()

	err = schema.SetDomain(domain)
	if err != nil {
		return errors.Join(ErrCreateMixTdb, err)
	}

	// cell and tile ordering was an arbitrary choice
	err = schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR)
	if err != nil {
		return errors.Join(ErrCreateMixTdb, err)
	}

	err = schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR)
	if err != nil {
		return errors.Join(ErrCreateMixTdb, err)
	}

	// add the struct fields as tiledb attributes
	tensor := &TraceTensor{}
	err = schemaAttrs(tensor, schema, ctx)
	if err != nil {
		return errors.Join(ErrCreateMixTdb, err)
	}

	array, err := tiledb.NewArray(ctx, file_uri)
	if err != nil {
		return errors.Join(ErrCreateMixTdb, err)
	}
	defer array.Free()

	err = array.Create(schema)
	if err != nil {
		return errors.Join(ErrCreateMixTdb, err)
	}

	return nil
}

// WriteMixture writes a traced channels x samples tensor plus its labels
// to a TileDB dense array. The labels are attached as array metadata so
// downstream loaders can pull the ground truth alongside the tensor.
func WriteMixture(file_uri string, ctx *tiledb.Context, data [][]float32, labels MixtureLabels) error {
	nchannels := uint64(len(data))
	if nchannels == 0 {
		return errors.Join(ErrWriteMixTdb, errors.New("no channels to write"))
	}
	nsamples := uint64(len(data[0]))
	if nsamples == 0 {
		return errors.Join(ErrWriteMixTdb, errors.New("no samples to write"))
	}

	err := mixture_tiledb_array(file_uri, ctx, nchannels, nsamples)
	if err != nil {
		return err
	}

	array, err := ArrayOpenWrite(ctx, file_uri)
	if err != nil {
		return errors.Join(ErrWriteMixTdb, err)
	}
	defer array.Free()
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return errors.Join(ErrWriteMixTdb, err)
	}
	defer query.Free()

	err = query.SetLayout(tiledb.TILEDB_ROW_MAJOR)
	if err != nil {
		return errors.Join(ErrWriteMixTdb, err)
	}

	// flatten row-major; channel is the slowest varying dimension
	amplitude := make([]float32, nchannels*nsamples)
	for channel, buffer := range data {
		copy(amplitude[uint64(channel)*nsamples:], buffer)
	}

	_, err = query.SetDataBuffer("Amplitude", amplitude)
	if err != nil {
		return errors.Join(ErrWriteMixTdb, ErrSetBuff, err)
	}

	// define the subarray (dim coordinates that we'll write into)
	subarr, err := array.NewSubarray()
	if err != nil {
		return errors.Join(ErrWriteMixTdb, err)
	}
	defer subarr.Free()

	chan_rng := tiledb.MakeRange(uint64(0), nchannels-uint64(1))
	samp_rng := tiledb.MakeRange(uint64(0), nsamples-uint64(1))
	subarr.AddRangeByName("Channel", chan_rng)
	subarr.AddRangeByName("Sample", samp_rng)
	err = query.SetSubarray(subarr)
	if err != nil {
		return errors.Join(ErrWriteMixTdb, err)
	}

	err = query.Submit()
	if err != nil {
		return errors.Join(ErrWriteMixTdb, err)
	}

	err = query.Finalize()
	if err != nil {
		return errors.Join(ErrWriteMixTdb, err)
	}

	jsn, err := JsonDumps(labels)
	if err != nil {
		return err
	}
	err = array.PutMetadata("mixture_labels", jsn)
	if err != nil {
		return errors.Join(ErrWriteMixTdb, err)
	}

	return nil
}

// DatasetOptions configures the mixture dataset builder.
type DatasetOptions struct {
	// NumMixtures is the number of mixes to create.
	NumMixtures int

	// NumSpeakers is the number of unique speakers in each mix.
	NumSpeakers int

	// Duration in seconds of speech per speaker and of the traced
	// output. Default 60.
	Duration float64

	// NumReceivers and Spacing define the linear microphone array.
	// Defaults 8 and 0.0186.
	NumReceivers int
	Spacing      float64

	// NumRaysAzimuth and NumRaysPolar set the tracing resolution.
	// Defaults 1024 and 512.
	NumRaysAzimuth int
	NumRaysPolar   int

	// MemChunk bounds the tracing working set in bytes.
	MemChunk int64

	// OutDir receives the WAV, TileDB and JSON outputs.
	OutDir string

	// ConfigURI optionally points at a TileDB config file.
	ConfigURI string
}

func (o *DatasetOptions) fillDefaults() {
	if o.Duration == 0 {
		o.Duration = 60
	}
	if o.NumReceivers == 0 {
		o.NumReceivers = 8
	}
	if o.Spacing == 0 {
		o.Spacing = 0.0186
	}
	if o.NumRaysAzimuth == 0 {
		o.NumRaysAzimuth = 1024
	}
	if o.NumRaysPolar == 0 {
		o.NumRaysPolar = 512
	}
}

// CreateDataset creates a mixed dataset from an isolated speech corpus by
// randomly placing speakers in the room with a randomly placed linear
// microphone array steered at the first speaker, then ray tracing the
// scene. Each mixture produces a multi-channel WAV, a TileDB trace
// tensor with labels attached, and a JSON label sidecar.
func CreateDataset(corpus *Corpus, room *RectRoom, opts DatasetOptions) error {
	opts.fillDefaults()

	config, err := loadConfig(opts.ConfigURI)
	if err != nil {
		return err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return err
	}
	defer ctx.Free()

	scene := room.Scene
	base_name := fmt.Sprintf("mixture-N%d-D%g", opts.NumSpeakers, opts.Duration)

	for index := 0; index < opts.NumMixtures; index++ {
		log.Println("Starting mixture", index+1, "of", opts.NumMixtures)

		speakers, err := corpus.Speakers(opts.NumSpeakers)
		if err != nil {
			return err
		}
		locations := room.CreatePositions(opts.NumSpeakers, 0.25)
		sources, err := corpus.Sources(speakers, locations, opts.Duration)
		if err != nil {
			return err
		}
		scene.AddSources(sources)

		// place the microphone array, steered towards the first speaker
		mic_padding := float64(opts.NumReceivers) * opts.Spacing * 0.5
		mic_origin := room.CreatePositions(1, mic_padding)[0]
		steering := locations[0].Sub(mic_origin)
		mic_array := NewLinearArray(steering, mic_origin, opts.NumReceivers, opts.Spacing)
		scene.AddReceivers(mic_array)

		stem := fmt.Sprintf("%s--%d", base_name, index)
		wav_uri := filepath.Join(opts.OutDir, stem+".wav")

		trace_data, err := scene.Trace(TraceOptions{
			NumRaysAzimuth: opts.NumRaysAzimuth,
			NumRaysPolar:   opts.NumRaysPolar,
			Duration:       opts.Duration,
			MemChunk:       opts.MemChunk,
		})
		if err != nil {
			return err
		}

		err = scene.Save(wav_uri, trace_data)
		if err != nil {
			return err
		}

		labels := MixtureLabels{
			SceneFile:   wav_uri,
			SampleRate:  scene.SampleRate(),
			NumChannels: len(mic_array),
			ArrayOrigin: mic_origin.Coords(),
			Steering:    steering.Coords(),
			Speakers:    make([]SpeakerLabel, len(sources)),
		}
		for i, source := range sources {
			labels.Speakers[i] = SpeakerLabel{
				Name:     source.Name,
				Location: source.Location.Coords(),
			}
			err = source.Save(filepath.Join(opts.OutDir, source.Name+".wav"))
			if err != nil {
				return err
			}
		}

		err = WriteMixture(filepath.Join(opts.OutDir, stem+".tiledb"), ctx, trace_data, labels)
		if err != nil {
			return err
		}

		_, err = WriteJson(filepath.Join(opts.OutDir, stem+".json"), opts.ConfigURI, labels)
		if err != nil {
			return err
		}

		scene.Clear()
		log.Println("Finished mixture", index+1)
	}

	return nil
}
