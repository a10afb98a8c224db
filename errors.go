package rayverb

import (
	"errors"
)

var ErrEmptySignal = errors.New("Error Source Signal Is Empty")
var ErrBadSampleRate = errors.New("Error Sample Rate Is Not Positive")
var ErrBadDuration = errors.New("Error Trace Duration Is Negative")
var ErrBadResolution = errors.New("Error Ray Resolution Is Negative")
var ErrBadMemChunk = errors.New("Error Memory Chunk Size Is Negative")
var ErrReadWav = errors.New("Error Reading WAV File")
var ErrWriteWav = errors.New("Error Writing WAV File")
var ErrCorpusEmpty = errors.New("Error Corpus Contains No Speakers")
var ErrCorpusClips = errors.New("Error Speaker Contains No Clips")
var ErrCreateMixTdb = errors.New("Error Creating Mixture TileDB Array")
var ErrWriteMixTdb = errors.New("Error Writing Mixture TileDB Array")
var ErrCreateAttributeTdb = errors.New("Error Creating Attribute for TileDB Array")
var ErrCreateSchemaTdb = errors.New("Error Creating TileDB Schema")
var ErrAddFilters = errors.New("Error Adding Filter To FilterList")
var ErrSetBuff = errors.New("Error Setting TileDB Buffer")
