package bombarena

import (
	"math"
	"math/rand"
)

const (
	Rows     = 13
	Cols     = 15
	TileSize = 50 // pixels per tile edge
)

type TileType int

const (
	TileEmpty TileType = iota
	TileWall
	TileBreakable
	TileBombPowerup
	TileFlamePowerup
	TileSpeedPowerup
	TileBomb
)

// powerups in the order a uniform draw picks them
var powerups = [3]TileType{TileBombPowerup, TileFlamePowerup, TileSpeedPowerup}

func (t TileType) IsPowerup() bool {
	return t >= TileBombPowerup && t <= TileSpeedPowerup
}

func (t TileType) String() string {
	switch t {
	case TileEmpty:
		return "empty"
	case TileWall:
		return "wall"
	case TileBreakable:
		return "breakable"
	case TileBombPowerup:
		return "bomb_powerup"
	case TileFlamePowerup:
		return "flame_powerup"
	case TileSpeedPowerup:
		return "speed_powerup"
	case TileBomb:
		return "bomb"
	default:
		return "unknown"
	}
}

// Coord is a tile position, row first.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pixels returns the top-left pixel position of the tile.
func (c Coord) Pixels() (x, y int) {
	return c.Col * TileSize, c.Row * TileSize
}

// PixelToTile rounds a pixel position to the tile it mostly covers.
func PixelToTile(x, y float64) Coord {
	return Coord{
		Row: int(math.Round(y / TileSize)),
		Col: int(math.Round(x / TileSize)),
	}
}

// Grid is the fixed-size arena. It is a value type: assigning or sending a
// Grid copies every tile, so snapshots never alias room state.
type Grid [Rows][Cols]TileType

func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// At returns the tile at (row, col), or a Wall for coordinates outside the grid.
func (g *Grid) At(row, col int) TileType {
	if !g.InBounds(row, col) {
		return TileWall
	}
	return g[row][col]
}

// Set writes a tile and reports whether the coordinate was inside the grid.
func (g *Grid) Set(row, col int, t TileType) bool {
	if !g.InBounds(row, col) {
		return false
	}
	g[row][col] = t
	return true
}

// SpawnCorners are assigned to players in registration order.
var SpawnCorners = [4]Coord{
	{Row: 1, Col: 1},
	{Row: Rows - 2, Col: Cols - 2},
	{Row: 1, Col: Cols - 2},
	{Row: Rows - 2, Col: 1},
}

// SafeZones are the three cells around each spawn corner that the map
// generator always leaves empty.
var SafeZones = [12]Coord{
	{Row: 1, Col: 1},
	{Row: 1, Col: 2},
	{Row: 2, Col: 1},
	{Row: 1, Col: Cols - 2},
	{Row: 1, Col: Cols - 3},
	{Row: 2, Col: Cols - 2},
	{Row: Rows - 2, Col: 1},
	{Row: Rows - 2, Col: 2},
	{Row: Rows - 3, Col: 1},
	{Row: Rows - 2, Col: Cols - 2},
	{Row: Rows - 2, Col: Cols - 3},
	{Row: Rows - 3, Col: Cols - 2},
}

// RandomSource is the subset of *rand.Rand (math/rand/v2) the game needs.
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) IntN(n int) int   { return rand.Intn(n) }

// DefaultRandom draws from the process-wide math/rand/v2 source.
var DefaultRandom RandomSource = globalRandom{}
