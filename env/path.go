package env

// Manhattan returns the L1 distance between two indices.
func Manhattan(a, b Index) int {
	var d int
	for axis := range NumAxes {
		d += absInt(a[axis] - b[axis])
	}
	return d
}

// DiagonalestLatticePath returns the face-adjacent walk from start to end that
// stays closest to the straight line between them. The result excludes start,
// ends with end and has length Manhattan(start, end).
//
// Along the ideal line each axis a crosses a cell boundary at parameter
// (2k+1)/(2*d[a]) for its k-th step. Steps are emitted in crossing order, which
// interleaves axes as evenly as a 6-connected lattice allows. Ties go to the
// lower axis.
func DiagonalestLatticePath(start, end Index) []Index {
	var d, sgn, taken [NumAxes]int
	n := 0
	for axis := range NumAxes {
		delta := end[axis] - start[axis]
		d[axis] = absInt(delta)
		switch {
		case delta > 0:
			sgn[axis] = 1
		case delta < 0:
			sgn[axis] = -1
		}
		n += d[axis]
	}

	path := make([]Index, 0, n)
	cur := start
	for range n {
		best := -1
		for axis := range NumAxes {
			if taken[axis] == d[axis] {
				continue
			}
			// Compare (2t_a+1)/d_a < (2t_b+1)/d_b without division.
			if best < 0 || (2*taken[axis]+1)*d[best] < (2*taken[best]+1)*d[axis] {
				best = axis
			}
		}
		taken[best]++
		cur[best] += sgn[best]
		path = append(path, cur)
	}
	return path
}

// DiagonalestLatticePath is the method form of the package function.
func (e *Environment3d) DiagonalestLatticePath(start, end Index) []Index {
	return DiagonalestLatticePath(start, end)
}

// DiscretizePositionSequence converts a sampled continuous trajectory into a
// walk over grid cells in which consecutive cells differ by one step along one
// axis. The first element is the cell of positions[0] and the last is the cell
// of the final position. Repeated cells collapse into one entry; skipped cells
// are filled with DiagonalestLatticePath.
func (e *Environment3d) DiscretizePositionSequence(positions []Point) []Index {
	if len(positions) == 0 {
		return nil
	}

	prev := e.IdxFromPos(positions[0])
	walk := []Index{prev}
	for _, pos := range positions[1:] {
		idx := e.IdxFromPos(pos)
		switch Manhattan(prev, idx) {
		case 0:
			continue
		case 1:
			walk = append(walk, idx)
		default:
			walk = append(walk, DiagonalestLatticePath(prev, idx)...)
		}
		prev = idx
	}
	return walk
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
