// Package geo defines the coordinate spaces shared by the whole module:
// geographic lng/lat, fractional tile units and integer global pixels.
//
// The world is a 512x512 grid of tiles, each tile a 128x128 grid of blocks,
// each block a 64x64 grid of one-bit pixels. Tile unit coordinates run from
// 0 to 512 across the world; global pixel coordinates are tile units scaled
// by the tile extent in pixels (128*64 = 8192) and floored.
package geo

import "math"

const (
	// TileWidthOffset is log2 of the number of blocks per tile side.
	TileWidthOffset = 7
	// BlockWidthOffset is log2 of the number of pixels per block side.
	BlockWidthOffset = 6
	// TileExtentOffset is log2 of the number of pixels per tile side.
	TileExtentOffset = TileWidthOffset + BlockWidthOffset

	// TileWidth is the number of blocks per tile side.
	TileWidth = 1 << TileWidthOffset // 128
	// BlockWidth is the number of pixels per block side.
	BlockWidth = 1 << BlockWidthOffset // 64
	// TileExtent is the number of pixels per tile side.
	TileExtent = 1 << TileExtentOffset // 8192

	// MapWidth is the number of tiles per world side.
	MapWidth = 512
)

// LngLatToTileUnit projects geographic coordinates into fractional tile
// units (a Web-Mercator-style projection, x and y in [0, 512) for valid
// input). Out-of-range values are not validated and propagate as-is.
func LngLatToTileUnit(lng, lat float64) (x, y float64) {
	x = (lng + 180) / 360 * MapWidth
	y = (math.Pi - math.Asinh(math.Tan(lat*math.Pi/180))) * MapWidth / (2 * math.Pi)
	return x, y
}

// TileUnitToLngLat is the algebraic inverse of LngLatToTileUnit. It operates
// in fractional tile units, not global pixels; callers must not mix scales.
func TileUnitToLngLat(x, y float64) (lng, lat float64) {
	lng = x/MapWidth*360 - 180
	lat = math.Atan(math.Sinh(math.Pi-y*2*math.Pi/MapWidth)) * 180 / math.Pi
	return lng, lat
}

// LngLatToGlobalPixel projects geographic coordinates into integer global
// pixel coordinates, the common space all line-drawing math operates in.
func LngLatToGlobalPixel(lng, lat float64) (x, y int) {
	fx, fy := LngLatToTileUnit(lng, lat)
	return int(math.Floor(fx * TileExtent)), int(math.Floor(fy * TileExtent))
}
