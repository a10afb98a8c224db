package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	rayverb "github.com/rayverb/go-rayverb"
)

// binaural_demo traces a small two-ear scene with three clicks, two of
// them delayed, and writes the stereo result.
func binaural_demo(click_uri, out_uri string, azimuth, polar int, duration float64, mem_chunk int64) error {
	scene := rayverb.NewScene()

	// ears separated by about 16cm (overestimate)
	scene.AddReceiver(rayverb.NewReceiver(rayverb.Vec3{X: -0.08, Z: 1.75}, "left_ear"))
	scene.AddReceiver(rayverb.NewReceiver(rayverb.Vec3{X: 0.08, Z: 1.75}, "right_ear"))

	// click 10 meters straight ahead, ~1ft above ground
	src1, err := rayverb.LoadSourceWav(click_uri, rayverb.Vec3{Y: 10, Z: 0.3}, "click-ahead")
	if err != nil {
		return err
	}
	scene.AddSource(src1)

	// click 12 meters ahead, 1.5 meters left of center, 2m above ground
	src2, err := rayverb.LoadSourceWav(click_uri, rayverb.Vec3{X: -1.5, Y: 12, Z: 2}, "click-left")
	if err != nil {
		return err
	}
	scene.AddSource(src2.Delay(2))

	// click 11 meters ahead, 3 meters right of center, 1m above ground
	src3, err := rayverb.LoadSourceWav(click_uri, rayverb.Vec3{X: 3, Y: 11, Z: 1}, "click-right")
	if err != nil {
		return err
	}
	scene.AddSource(src3.Delay(4))

	// a 10x20x3 room shifted so the listener stands off-center
	shift := rayverb.Vec3{X: -5, Y: -5}
	room := rayverb.NewRectRoom(10, 20, 3)
	for _, tri := range room.Scene.Triangles {
		scene.AddSurface(rayverb.NewTriangle(
			tri.V0.Add(shift), tri.V1.Add(shift), tri.V2.Add(shift)))
	}

	start := time.Now()
	trace_data, err := scene.Trace(rayverb.TraceOptions{
		NumRaysAzimuth: azimuth,
		NumRaysPolar:   polar,
		Duration:       duration,
		MemChunk:       mem_chunk,
	})
	if err != nil {
		return err
	}
	log.Println("Done in", time.Since(start))

	return scene.Save(out_uri, trace_data)
}

// create_dataset trawls the corpus and produces mixture records.
func create_dataset(corpus_uri, config_uri, outdir_uri string, mixtures, speakers int,
	duration float64, azimuth, polar int, mem_chunk int64) error {

	log.Println("Opening corpus:", corpus_uri)
	corpus, err := rayverb.OpenCorpus(corpus_uri, config_uri)
	if err != nil {
		return err
	}
	defer corpus.Close()

	err = os.MkdirAll(outdir_uri, 0o755)
	if err != nil {
		return err
	}

	room := rayverb.NewRectRoom(3, 4, 3)

	return rayverb.CreateDataset(corpus, room, rayverb.DatasetOptions{
		NumMixtures:    mixtures,
		NumSpeakers:    speakers,
		Duration:       duration,
		NumRaysAzimuth: azimuth,
		NumRaysPolar:   polar,
		MemChunk:       mem_chunk,
		OutDir:         outdir_uri,
		ConfigURI:      config_uri,
	})
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			&cli.Command{
				Name: "demo",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "click-uri",
						Value: "click.wav",
						Usage: "Pathname to a WAV clip used as the click source.",
					},
					&cli.StringFlag{
						Name:  "out-uri",
						Value: "rect-room.wav",
						Usage: "Pathname to write the traced stereo WAV to.",
					},
					&cli.IntFlag{
						Name:  "azimuth",
						Value: 152,
						Usage: "Azimuthal divisions of the ray direction sphere.",
					},
					&cli.IntFlag{
						Name:  "polar",
						Value: 152,
						Usage: "Polar divisions of the ray direction sphere.",
					},
					&cli.Float64Flag{
						Name:  "duration",
						Value: 5,
						Usage: "Output length in seconds per channel.",
					},
					&cli.Int64Flag{
						Name:    "mem-chunk",
						Value:   int64(5e9),
						Usage:   "Max working-set size in bytes per parallel chunk.",
						EnvVars: []string{"MEMCHUNK"},
					},
				},
				Action: func(cCtx *cli.Context) error {
					err := binaural_demo(cCtx.String("click-uri"), cCtx.String("out-uri"),
						cCtx.Int("azimuth"), cCtx.Int("polar"),
						cCtx.Float64("duration"), cCtx.Int64("mem-chunk"))
					return err
				},
			},
			&cli.Command{
				Name: "dataset",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "corpus-uri",
						Usage: "URI or pathname to a corpus directory (one subdirectory per speaker).",
					},
					&cli.StringFlag{
						Name:  "config-uri",
						Usage: "URI or pathname to a TileDB config file.",
					},
					&cli.StringFlag{
						Name:  "outdir-uri",
						Usage: "URI or pathname to an output directory.",
					},
					&cli.IntFlag{
						Name:  "mixtures",
						Value: 60,
						Usage: "Number of mixtures to create.",
					},
					&cli.IntFlag{
						Name:  "speakers",
						Value: 3,
						Usage: "Number of unique speakers per mixture.",
					},
					&cli.Float64Flag{
						Name:  "duration",
						Value: 60,
						Usage: "Seconds of speech per speaker and of traced output.",
					},
					&cli.IntFlag{
						Name:  "azimuth",
						Value: 640,
						Usage: "Azimuthal divisions of the ray direction sphere.",
					},
					&cli.IntFlag{
						Name:  "polar",
						Value: 320,
						Usage: "Polar divisions of the ray direction sphere.",
					},
					&cli.Int64Flag{
						Name:    "mem-chunk",
						Value:   int64(5e9),
						Usage:   "Max working-set size in bytes per parallel chunk.",
						EnvVars: []string{"MEMCHUNK"},
					},
				},
				Action: func(cCtx *cli.Context) error {
					err := create_dataset(cCtx.String("corpus-uri"), cCtx.String("config-uri"),
						cCtx.String("outdir-uri"), cCtx.Int("mixtures"), cCtx.Int("speakers"),
						cCtx.Float64("duration"), cCtx.Int("azimuth"), cCtx.Int("polar"),
						cCtx.Int64("mem-chunk"))
					return err
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
