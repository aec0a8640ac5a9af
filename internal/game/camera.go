package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	zoomMin = 0.25
	zoomMax = 3.0
)

// camera maps world coordinates onto the playfield viewport.
type camera struct {
	x, y       float64 // world point at the viewport centre
	zoom       float64
	offX, offY float64 // viewport origin on screen
	vpW, vpH   float64
}

// toScreen converts a world point to screen pixels.
func (c camera) toScreen(wx, wy float64) (float32, float32) {
	sx := (wx-c.x)*c.zoom + c.vpW/2 + c.offX
	sy := (wy-c.y)*c.zoom + c.vpH/2 + c.offY
	return float32(sx), float32(sy)
}

// toWorld converts screen pixels to a world point.
func (c camera) toWorld(sx, sy float64) (float64, float64) {
	wx := (sx-c.offX-c.vpW/2)/c.zoom + c.x
	wy := (sy-c.offY-c.vpH/2)/c.zoom + c.y
	return wx, wy
}

// inViewport reports whether the screen point lies on the playfield.
func (c camera) inViewport(sx, sy float64) bool {
	return sx >= c.offX && sx < c.offX+c.vpW && sy >= c.offY && sy < c.offY+c.vpH
}

// geoM is the world-to-screen transform for blitting world-space images.
func (c camera) geoM() ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-c.x, -c.y)
	m.Scale(c.zoom, c.zoom)
	m.Translate(c.vpW/2+c.offX, c.vpH/2+c.offY)
	return m
}

// setZoom clamps z into the allowed range.
func (c *camera) setZoom(z float64) {
	if z < zoomMin {
		z = zoomMin
	}
	if z > zoomMax {
		z = zoomMax
	}
	c.zoom = z
}

// clamp keeps the view centre inside a world of size w x h. A world smaller
// than the view is centred.
func (c *camera) clamp(w, h float64) {
	halfW := c.vpW / 2 / c.zoom
	halfH := c.vpH / 2 / c.zoom
	c.x = clampCentre(c.x, halfW, w)
	c.y = clampCentre(c.y, halfH, h)
}

func clampCentre(v, half, size float64) float64 {
	if 2*half >= size {
		return size / 2
	}
	if v < half {
		return half
	}
	if v > size-half {
		return size - half
	}
	return v
}
