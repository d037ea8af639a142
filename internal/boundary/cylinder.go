// Package boundary keeps particles inside the cylindrical confinement after
// each integration step.
package boundary

import (
	"math"

	"github.com/particlekit/abp3d/internal/particle"
)

// Cylinder reflects particles at the walls of a cylinder of the given radius
// centered on the z axis, spanning [-Height, Height]. Enforcement is
// stateless and re-applied every step.
type Cylinder struct {
	Radius   float64
	Height   float64
	Diameter float64
}

// Apply projects radially escaped particles back onto the cylinder surface
// and reflects axial escapes elastically. A penetration deeper than four
// diameters comes from a single oversized step; reflecting it would place
// the particle far inside the opposite half, so it is instead repositioned
// just inside the wall.
func (c Cylinder) Apply(s *particle.State) {
	wall2 := c.Radius * c.Radius
	heightL := c.Height - c.Diameter/2
	deep := 4 * c.Diameter

	for k := 0; k < s.N; k++ {
		d2 := s.X[k]*s.X[k] + s.Y[k]*s.Y[k]
		if d2 > wall2 {
			scale := math.Sqrt(wall2 / d2)
			s.X[k] *= scale
			s.Y[k] *= scale
		}

		if s.Z[k] > heightL {
			pen := s.Z[k] - heightL
			if pen > deep {
				s.Z[k] = c.Height - 2*c.Diameter
			} else {
				s.Z[k] = heightL - pen
			}
		} else if s.Z[k] < -heightL {
			pen := -heightL - s.Z[k]
			if pen > deep {
				s.Z[k] = 2*c.Diameter - c.Height
			} else {
				s.Z[k] = -heightL + pen
			}
		}
	}
}
