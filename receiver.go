package rayverb

import "fmt"

// Receiver is a sound sensor modelled as a point at which a signal can be
// detected. Each receiver represents a single channel in the output of a
// traced Scene. Receivers are immutable.
type Receiver struct {
	Location Vec3
	Name     string
}

// NewReceiver constructs a Receiver at the given location.
func NewReceiver(location Vec3, name string) *Receiver {
	return &Receiver{Location: location, Name: name}
}

// NewLinearArray creates a linear microphone array normal in the xy-plane
// to the given steering vector, centered around the origin point. The
// default parameters used by the dataset builder (8 channels spaced
// 0.0186m apart) are based on the microphone array described in:
//
// M. H. Anderson et al., "Towards mobile gaze-directed beamforming: a
// novel neuro-technology for hearing loss", 2018 40th Annual International
// Conference of the IEEE Engineering in Medicine and Biology Society
// (EMBC), Jul. 2018, pp. 5806-5809, doi: 10.1109/EMBC.2018.8513566.
func NewLinearArray(steering, origin Vec3, numReceivers int, spacing float64) []*Receiver {
	direction := Vec3{X: steering.Y, Y: -steering.X, Z: 0}.Unit()
	half_length := direction.Scale(float64(numReceivers-1) * spacing * 0.5)

	receivers := make([]*Receiver, numReceivers)
	for index := 0; index < numReceivers; index++ {
		location := origin.Add(direction.Scale(float64(index) * spacing)).Sub(half_length)
		receivers[index] = NewReceiver(location, fmt.Sprintf("channel %d", index))
	}

	return receivers
}
