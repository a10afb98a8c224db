package rayverb

import (
	"errors"
	"math"
	"os"
	"strings"

	"github.com/go-audio/wav"
)

// SourceRadius is the radius in metres of the sphere used as the
// intersection target for a sound source. It may eventually be derived
// from the strength of the signal.
const SourceRadius = 0.05

// Source is a sound emitter modelled as a small sphere from which a
// monaural signal originates. Sources are immutable once placed in a
// Scene.
type Source struct {
	Location   Vec3
	Radius     float64
	SampleRate int
	Signal     []float32
	Name       string
}

// NewSourceFromSamples constructs a Source from a mono waveform and its
// sample rate. The signal is peak normalised to [-1, 1]; a copy is taken
// so the caller's slice stays untouched.
func NewSourceFromSamples(samples []float32, sampleRate int, location Vec3, name string) (*Source, error) {
	if len(samples) == 0 {
		return nil, errors.Join(ErrEmptySignal, errors.New("source: "+name))
	}
	if sampleRate <= 0 {
		return nil, errors.Join(ErrBadSampleRate, errors.New("source: "+name))
	}

	signal := make([]float32, len(samples))
	copy(signal, samples)

	peak := float32(0.0)
	for _, v := range signal {
		a := v
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	if peak > 0 {
		for i := range signal {
			signal[i] /= peak
		}
	}

	src := &Source{
		Location:   location,
		Radius:     SourceRadius,
		SampleRate: sampleRate,
		Signal:     signal,
		Name:       name,
	}

	return src, nil
}

// LoadSourceWav reads a mono (or first-channel) waveform from a WAV file
// and constructs a Source at the given location. Integer PCM samples are
// rescaled to [-1, 1] before the peak normalisation of the constructor.
func LoadSourceWav(path string, location Vec3, name string) (*Source, error) {
	samples, sample_rate, err := ReadWav(path)
	if err != nil {
		return nil, err
	}

	return NewSourceFromSamples(samples, sample_rate, location, name)
}

// Delay prepends round(seconds * sampleRate) zero samples to the signal.
// The delay is quantised at the source's own sample rate, and is meant to
// be applied before the source is traced.
func (s *Source) Delay(seconds float64) *Source {
	samp_delay := int(math.Round(seconds * float64(s.SampleRate)))
	if samp_delay <= 0 {
		return s
	}

	signal := make([]float32, samp_delay+len(s.Signal))
	copy(signal[samp_delay:], s.Signal)
	s.Signal = signal

	return s
}

// Intersect calculates the distance of intersection of a ray with the
// source sphere by the quadratic roots of |origin + t*dir - center|^2 = r^2.
// A non-negative discriminant is a hit; the smaller root is preferred and
// the greater root is used when the smaller is negative. Both roots
// negative therefore yields a negative distance, which callers filter
// with their own distance > 0 guard.
func (s *Source) Intersect(origin, direction Vec3) (isIntersect bool, distance float64) {
	temp := origin.Sub(s.Location)
	quad_a := direction.Dot(direction)
	quad_b := direction.Dot(temp)
	quad_c := temp.Dot(temp) - s.Radius*s.Radius

	discriminant := quad_b*quad_b - quad_a*quad_c
	if discriminant < 0 {
		return false, 0
	}

	discriminant = math.Sqrt(discriminant)
	distance = (-quad_b - discriminant) / quad_a
	if distance < 0 {
		distance = (-quad_b + discriminant) / quad_a
	}

	return true, distance
}

// Save writes the source's mono signal as a 16 bit PCM WAV file.
func (s *Source) Save(path string) error {
	return writeWav(path, [][]float32{s.Signal}, s.SampleRate)
}

// ReadWav decodes a WAV file and returns the first channel as float32
// samples in [-1, 1] together with the sample rate. file:// uris (as
// produced by VFS listings) are accepted alongside plain paths.
func ReadWav(path string) ([]float32, int, error) {
	path = strings.TrimPrefix(path, "file://")

	stream, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Join(ErrReadWav, err)
	}
	defer stream.Close()

	decoder := wav.NewDecoder(stream)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, errors.Join(ErrReadWav, err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, 0, errors.Join(ErrReadWav, errors.New("empty PCM buffer: "+path))
	}

	nchannels := buf.Format.NumChannels
	if nchannels < 1 {
		nchannels = 1
	}

	// rescale integer PCM to [-1, 1]; using only the first channel
	scale := float32(int64(1) << (buf.SourceBitDepth - 1))
	if buf.SourceBitDepth == 0 {
		scale = float32(1 << 15)
	}

	nframes := len(buf.Data) / nchannels
	samples := make([]float32, nframes)
	for i := 0; i < nframes; i++ {
		samples[i] = float32(buf.Data[i*nchannels]) / scale
	}

	return samples, buf.Format.SampleRate, nil
}
