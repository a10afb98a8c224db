package rayverb

import (
	"errors"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Save writes a channels x samples float32 matrix as a multi-channel
// 16 bit PCM WAV file at the scene's effective sample rate. Channel
// ordering matches the receiver insertion order of the trace that
// produced the data.
func (s *Scene) Save(path string, data [][]float32) error {
	if s.sampleRate <= 0 {
		return errors.Join(ErrWriteWav, ErrBadSampleRate)
	}

	return writeWav(path, data, s.sampleRate)
}

// writeWav serialises float32 channel data in [-1, 1] as interleaved
// 16 bit PCM. Samples outside the valid range are clipped.
func writeWav(path string, data [][]float32, sampleRate int) error {
	num_channels := len(data)
	if num_channels == 0 {
		return errors.Join(ErrWriteWav, errors.New("no channels to write"))
	}

	num_samples := 0
	for _, channel := range data {
		if len(channel) > num_samples {
			num_samples = len(channel)
		}
	}

	stream, err := os.Create(path)
	if err != nil {
		return errors.Join(ErrWriteWav, err)
	}
	defer stream.Close()

	const bit_depth = 16
	const pcm_format = 1
	encoder := wav.NewEncoder(stream, sampleRate, bit_depth, num_channels, pcm_format)

	interleaved := make([]int, num_samples*num_channels)
	for frame := 0; frame < num_samples; frame++ {
		for channel := 0; channel < num_channels; channel++ {
			var v float32
			if frame < len(data[channel]) {
				v = data[channel][frame]
			}
			interleaved[frame*num_channels+channel] = clipToPCM16(v)
		}
	}

	buffer := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: num_channels,
			SampleRate:  sampleRate,
		},
		Data:           interleaved,
		SourceBitDepth: bit_depth,
	}

	err = encoder.Write(buffer)
	if err != nil {
		return errors.Join(ErrWriteWav, err)
	}

	err = encoder.Close()
	if err != nil {
		return errors.Join(ErrWriteWav, err)
	}

	return nil
}

func clipToPCM16(v float32) int {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int(v * 32767)
}
