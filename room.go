package rayverb

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// RectRoom composes a Scene with the dimensions of a closed, axis-aligned
// rectangular room. Width spans the x-dimension, length the y-dimension
// and height the z-dimension; the room occupies the positive octant with
// one corner at the origin.
type RectRoom struct {
	Scene  *Scene
	Width  float64
	Length float64
	Height float64
}

// NewRectRoom builds the most basic, pre-defined scene: a closed
// rectangular room of 12 triangles covering six faces with outward
// normals.
func NewRectRoom(width, length, height float64) *RectRoom {
	room := &RectRoom{
		Scene:  NewScene(),
		Width:  width,
		Length: length,
		Height: height,
	}

	// corners of the room
	vert1 := Vec3{}
	vert2 := Vec3{Z: height}
	vert3 := Vec3{X: width, Z: height}
	vert4 := Vec3{X: width}
	vert5 := Vec3{Y: length}
	vert6 := Vec3{Y: length, Z: height}
	vert7 := Vec3{X: width, Y: length, Z: height}
	vert8 := Vec3{X: width, Y: length}

	// close wall
	room.Scene.AddSurfaces([]Triangle{
		NewTriangle(vert1, vert4, vert2),
		NewTriangle(vert2, vert4, vert3),
	})
	// farthest wall
	room.Scene.AddSurfaces([]Triangle{
		NewTriangle(vert5, vert6, vert8),
		NewTriangle(vert6, vert7, vert8),
	})
	// left wall
	room.Scene.AddSurfaces([]Triangle{
		NewTriangle(vert1, vert2, vert5),
		NewTriangle(vert2, vert6, vert5),
	})
	// right wall
	room.Scene.AddSurfaces([]Triangle{
		NewTriangle(vert4, vert8, vert3),
		NewTriangle(vert3, vert8, vert7),
	})
	// floor
	room.Scene.AddSurfaces([]Triangle{
		NewTriangle(vert1, vert5, vert4),
		NewTriangle(vert5, vert8, vert4),
	})
	// roof
	room.Scene.AddSurfaces([]Triangle{
		NewTriangle(vert2, vert3, vert6),
		NewTriangle(vert6, vert3, vert7),
	})

	return room
}

// CreatePositions returns numPositions random locations within the room,
// keeping a padding in metres from each wall on the x and y axes. The
// height coordinate is drawn from an equal-weight mixture of two normals
// (a crude human standing-height distribution used by the dataset
// builder).
func (r *RectRoom) CreatePositions(numPositions int, padding float64) []Vec3 {
	uniform_x := distuv.Uniform{Min: padding, Max: r.Width - padding}
	uniform_y := distuv.Uniform{Min: padding, Max: r.Length - padding}
	pick := distuv.Bernoulli{P: 0.5}
	height_a := distuv.Normal{Mu: 1.63, Sigma: 0.07}
	height_b := distuv.Normal{Mu: 1.75, Sigma: 0.075}

	positions := make([]Vec3, numPositions)
	for i := range positions {
		z := height_a.Rand()
		if pick.Rand() > 0 {
			z = height_b.Rand()
		}
		positions[i] = Vec3{
			X: uniform_x.Rand(),
			Y: uniform_y.Rand(),
			Z: z,
		}
	}

	return positions
}
