// Package mesh provides named vertex sets that particles can be pulled onto.
//
// A mesh is a flat []float64 of x,y,z triples. The simulation only reads
// vertex positions; topology is irrelevant.
package mesh

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownMesh is returned when a mesh name is not in the set.
var ErrUnknownMesh = errors.New("mesh: unknown mesh")

// Set maps a mesh name to its flat vertex array (stride 3).
type Set map[string][]float64

// Names returns the mesh names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the vertex array for name.
func (s Set) Lookup(name string) ([]float64, error) {
	verts, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMesh, name)
	}
	return verts, nil
}

// VertexCount returns the number of complete vertices in the named mesh.
func (s Set) VertexCount(name string) int {
	return len(s[name]) / 3
}

// Next returns the name following current in sorted order, wrapping around.
func (s Set) Next(current string) string {
	names := s.Names()
	if len(names) == 0 {
		return current
	}
	for i, name := range names {
		if name == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// Builtin returns the procedural meshes at the given resolution.
func Builtin(resolution int) Set {
	if resolution < 3 {
		resolution = 3
	}
	return Set{
		"sphere": Sphere(resolution),
		"torus":  Torus(resolution, 0.35),
		"cube":   Cube(resolution),
		"helix":  Helix(resolution),
	}
}

// Sphere returns vertices on a unit UV sphere.
func Sphere(res int) []float64 {
	verts := make([]float64, 0, (res+1)*res*3)
	for lat := 0; lat <= res; lat++ {
		theta := math.Pi * float64(lat) / float64(res)
		sinT, cosT := math.Sincos(theta)
		for lon := 0; lon < res; lon++ {
			phi := 2 * math.Pi * float64(lon) / float64(res)
			sinP, cosP := math.Sincos(phi)
			verts = append(verts, sinT*cosP, cosT, sinT*sinP)
		}
	}
	return verts
}

// Torus returns vertices on a torus with major radius 1 lying in the XZ plane.
func Torus(res int, minor float64) []float64 {
	verts := make([]float64, 0, res*res*3)
	for i := 0; i < res; i++ {
		u := 2 * math.Pi * float64(i) / float64(res)
		sinU, cosU := math.Sincos(u)
		for j := 0; j < res; j++ {
			v := 2 * math.Pi * float64(j) / float64(res)
			sinV, cosV := math.Sincos(v)
			r := 1 + minor*cosV
			verts = append(verts, r*cosU, minor*sinV, r*sinU)
		}
	}
	return verts
}

// Cube returns a res x res grid of vertices on each face of the cube [-1, 1]^3.
func Cube(res int) []float64 {
	verts := make([]float64, 0, 6*res*res*3)
	step := 2.0 / float64(res-1)
	for axis := 0; axis < 3; axis++ {
		for _, side := range [2]float64{-1, 1} {
			for i := 0; i < res; i++ {
				a := -1 + float64(i)*step
				for j := 0; j < res; j++ {
					b := -1 + float64(j)*step
					var v [3]float64
					v[axis] = side
					v[(axis+1)%3] = a
					v[(axis+2)%3] = b
					verts = append(verts, v[0], v[1], v[2])
				}
			}
		}
	}
	return verts
}

// Helix returns two interleaved strands spiralling along Y in [-1, 1].
func Helix(res int) []float64 {
	n := res * 4
	verts := make([]float64, 0, n*2*3)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		angle := t * 6 * math.Pi
		y := -1 + 2*t
		for _, offset := range [2]float64{0, math.Pi} {
			sinA, cosA := math.Sincos(angle + offset)
			verts = append(verts, 0.5*cosA, y, 0.5*sinA)
		}
	}
	return verts
}
