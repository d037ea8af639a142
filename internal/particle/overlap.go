package particle

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrDensity reports that the initial configuration could not be spread out
// to the minimum pairwise separation within the allowed redraws. The particle
// count is too high for the confinement volume.
var ErrDensity = errors.New("particle density too high for confinement volume")

const maxRedrawAttempts = 3

// ResolveOverlaps enforces a minimum pairwise separation of 1.5 diameters by
// redrawing the x and y coordinates of the closer particle of an overlapping
// pair. The z coordinate is left untouched. Each overlap gets at most
// maxRedrawAttempts redraws before the pass fails with ErrDensity.
//
// The pass runs single-threaded: the inner loop repositions particle j while
// the outer loop walks k, so partitioning the outer loop across workers would
// race on the slots it rewrites.
func ResolveOverlaps(s *State, diameter, wall float64, rng *rand.Rand) error {
	minSep := 1.5 * diameter
	for k := 0; k < s.N; k++ {
		for j := 0; j < s.N; j++ {
			if j == k {
				continue
			}
			sep := s.Separation(k, j)
			attempts := 0
			for sep < minSep {
				if attempts >= maxRedrawAttempts {
					return fmt.Errorf("particles %d and %d still %.4f apart (need %.4f) after %d redraws: %w",
						k, j, sep, minSep, attempts, ErrDensity)
				}
				s.X[j] = uniformRange(rng, wall)
				s.Y[j] = uniformRange(rng, wall)
				sep = s.Separation(k, j)
				attempts++
			}
		}
	}
	return nil
}
