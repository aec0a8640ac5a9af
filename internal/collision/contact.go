package collision

import "github.com/Garsondee/Sub-Sense/internal/geom"

// Contact describes the wall edge a moving box ran into.
type Contact struct {
	ObstacleID int
	Edge       geom.Segment
	Normal     geom.Vector // unit, pointing out of the obstacle
}

// WallHeading returns the direction angle of the impacted edge.
func (c Contact) WallHeading() float64 { return c.Edge.Heading() }
