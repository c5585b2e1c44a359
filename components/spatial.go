// Package components defines ECS components for plume searchers.
package components

import "github.com/pthm-cable/olfaction/env"

// Position is a searcher's location in meters.
type Position struct {
	X, Y, Z float64
}

// Point converts p to an env.Point.
func (p Position) Point() env.Point { return env.Point{p.X, p.Y, p.Z} }

// PositionFrom converts an env.Point to a Position.
func PositionFrom(pt env.Point) Position { return Position{X: pt[0], Y: pt[1], Z: pt[2]} }

// Velocity is a searcher's velocity in meters per second.
type Velocity struct {
	X, Y, Z float64
}
