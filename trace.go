package rayverb

import (
	"log"
	"math"
	"runtime"

	"github.com/alitto/pond"
	"github.com/samber/lo"
)

// TraceOptions carries the tunables of a trace. The zero value of any
// field selects its default.
type TraceOptions struct {
	// NumRaysAzimuth is the number of divisions of the 2pi radians
	// around the z-axis (zero at the x-axis). Default 128.
	NumRaysAzimuth int

	// NumRaysPolar is the number of divisions of the pi radians away
	// from the z-axis. Default 128.
	NumRaysPolar int

	// Duration is the length in seconds of the output data per channel.
	// Default 5.
	Duration float64

	// MemChunk roughly represents the number of bytes of ray buffers
	// calculated before results are reduced into the channel buffer. It
	// divides the work so the size of the working set does not exceed
	// system memory; a hard constraint rather than a hint. Default 5GB.
	MemChunk int64

	// StrictHits selects the bounded in-triangle hit test instead of the
	// permissive predicate carried over from the original model.
	StrictHits bool
}

func (o *TraceOptions) fillDefaults() {
	if o.NumRaysAzimuth == 0 {
		o.NumRaysAzimuth = 128
	}
	if o.NumRaysPolar == 0 {
		o.NumRaysPolar = 128
	}
	if o.Duration == 0 {
		o.Duration = 5
	}
	if o.MemChunk == 0 {
		o.MemChunk = int64(5e9)
	}
}

// Trace calculates the signal received by each receiver in the scene and
// returns one float32 buffer per receiver, in receiver insertion order.
// Each buffer is peak normalised; an all-zero channel is left untouched.
//
// Rays are dispatched on a worker pool, one worker per CPU, in chunks
// sized so the per-ray buffers stay within opts.MemChunk bytes. Chunks are
// reduced one after another and each chunk in direction grid order, so the
// accumulation order is the same whatever the chunk size and results are
// reproducible bit for bit.
//
// The scene must not be mutated while Trace runs.
func (s *Scene) Trace(opts TraceOptions) ([][]float32, error) {
	opts.fillDefaults()

	if opts.NumRaysAzimuth < 0 || opts.NumRaysPolar < 0 {
		return nil, ErrBadResolution
	}
	if opts.Duration < 0 {
		return nil, ErrBadDuration
	}
	if opts.MemChunk < 0 {
		return nil, ErrBadMemChunk
	}

	num_channels := len(s.Receivers)
	num_samples := int(math.Round(float64(s.sampleRate) * opts.Duration))

	data := make([][]float32, num_channels)
	for channel := range data {
		data[channel] = make([]float32, num_samples)
	}
	if num_channels == 0 || num_samples == 0 {
		// nothing to hear; a zero-shaped result rather than an error
		return data, nil
	}

	directions := directionGrid(opts.NumRaysAzimuth, opts.NumRaysPolar)
	total_rays := len(directions)

	// chunk the grid so that chunkSize * numSamples * 4 bytes <= MemChunk
	chunk_size := int(opts.MemChunk / (int64(num_samples) * 4))
	if chunk_size < 1 {
		chunk_size = 1
	}
	if chunk_size > total_rays {
		chunk_size = total_rays
	}
	chunks := lo.Chunk(directions, chunk_size)

	// fixed pool; workers are CPU bound so one per core
	n := runtime.NumCPU()
	pool := pond.New(n, 0, pond.MinWorkers(n))
	defer pool.StopAndWait()

	for channel, receiver := range s.Receivers {
		log.Println("Tracing channel", channel, "("+receiver.Name+")")
		log.Println("Queueing", len(chunks), "chunks of up to", chunk_size, "rays")

		rays_done := 0
		for chunk_index, chunk := range chunks {
			results := make([][]float32, len(chunk))

			group := pool.Group()
			for i, direction := range chunk {
				i, direction := i, direction
				location := receiver.Location
				group.Submit(func() {
					ray_data := make([]float32, num_samples)
					ray := NewRay(direction, location, 0)
					ray.Trace(s, num_samples, ray_data, opts.StrictHits)
					results[i] = ray_data
				})
			}
			group.Wait()

			// serialised reduction into the channel buffer
			buffer := data[channel]
			for _, ray_data := range results {
				for i := range ray_data {
					buffer[i] += ray_data[i]
				}
				rays_done++
			}

			log.Println("Channel", channel, "chunk", chunk_index+1, "of", len(chunks),
				"done;", rays_done, "/", total_rays, "rays")
		}

		normalise(data[channel])
		log.Println("Finished channel", channel)
	}

	return data, nil
}

// directionGrid produces the azimuth*polar unit directions of the
// spherical grid, polar index outermost.
func directionGrid(numRaysAzimuth, numRaysPolar int) []Vec3 {
	directions := make([]Vec3, 0, numRaysAzimuth*numRaysPolar)
	for pol_index := 0; pol_index < numRaysPolar; pol_index++ {
		polar_angle := float64(pol_index) * math.Pi / float64(numRaysPolar)
		cyl_coord := math.Sin(polar_angle)
		for az_index := 0; az_index < numRaysAzimuth; az_index++ {
			azimuth_angle := float64(az_index) * 2 * math.Pi / float64(numRaysAzimuth)
			directions = append(directions, Vec3{
				X: cyl_coord * math.Cos(azimuth_angle),
				Y: cyl_coord * math.Sin(azimuth_angle),
				Z: math.Cos(polar_angle),
			})
		}
	}

	return directions
}

// normalise divides the buffer by its peak absolute value in place,
// leaving an all-zero buffer untouched.
func normalise(buffer []float32) {
	peak := float32(0.0)
	for _, v := range buffer {
		a := v
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	for i := range buffer {
		buffer[i] /= peak
	}
}
