package bombarena

// PowerupChance is the probability that a destroyed breakable block leaves a
// power-up behind.
const PowerupChance = 0.3

type Direction string

const (
	DirectionCenter Direction = "center"
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionLeft   Direction = "left"
	DirectionRight  Direction = "right"
)

// blast rays, in emission order
var rays = [4]struct {
	dr, dc int
	dir    Direction
}{
	{-1, 0, DirectionUp},
	{1, 0, DirectionDown},
	{0, -1, DirectionLeft},
	{0, 1, DirectionRight},
}

type ExplosionTile struct {
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Direction Direction `json:"direction"`
}

// Movement reports which neighbours of a tile can be entered.
type Movement struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// IsWalkable reports whether a player may stand on the tile. Bombs block
// movement as soon as they are placed.
func IsWalkable(t TileType) bool {
	return t == TileEmpty || t.IsPowerup()
}

func IsBreakable(t TileType) bool {
	return t == TileBreakable
}

// CanPlaceBomb is true only for an in-bounds Empty tile.
func CanPlaceBomb(row, col int, g *Grid) bool {
	return g.InBounds(row, col) && g[row][col] == TileEmpty
}

// CheckCollision returns the walkable neighbours of (row, col).
func CheckCollision(row, col int, g *Grid) Movement {
	return Movement{
		Up:    g.InBounds(row-1, col) && IsWalkable(g[row-1][col]),
		Down:  g.InBounds(row+1, col) && IsWalkable(g[row+1][col]),
		Left:  g.InBounds(row, col-1) && IsWalkable(g[row][col-1]),
		Right: g.InBounds(row, col+1) && IsWalkable(g[row][col+1]),
	}
}

// CalculateExplosion returns the tiles reached by a bomb at (row, col): the
// center first, then each ray nearest to farthest in up, down, left, right
// order. A ray stops before leaving the grid or hitting a wall, and stops
// after the first breakable block it reaches.
func CalculateExplosion(row, col, radius int, g *Grid) []ExplosionTile {
	if !g.InBounds(row, col) {
		return nil
	}

	tiles := make([]ExplosionTile, 0, 1+4*max(radius, 0))
	tiles = append(tiles, ExplosionTile{Row: row, Col: col, Direction: DirectionCenter})

	for _, ray := range rays {
		for i := 1; i <= radius; i++ {
			r, c := row+ray.dr*i, col+ray.dc*i
			if !g.InBounds(r, c) {
				break
			}

			tile := g[r][c]
			if tile == TileWall {
				break
			}

			tiles = append(tiles, ExplosionTile{Row: r, Col: c, Direction: ray.dir})

			if IsBreakable(tile) {
				break
			}
		}
	}

	return tiles
}

// ResolveBreakable destroys the breakable block at c. The tile becomes Empty,
// or with probability chance one of the three power-ups picked uniformly.
// It returns the new tile and false if c did not hold a breakable block.
func ResolveBreakable(g *Grid, c Coord, rng RandomSource, chance float64) (TileType, bool) {
	if !IsBreakable(g.At(c.Row, c.Col)) {
		return g.At(c.Row, c.Col), false
	}

	next := TileEmpty
	if rng.Float64() < chance {
		next = powerups[rng.IntN(len(powerups))]
	}
	g[c.Row][c.Col] = next
	return next, true
}

// IsPlayerInExplosion reports whether any explosion tile covers c.
func IsPlayerInExplosion(c Coord, tiles []ExplosionTile) bool {
	for _, t := range tiles {
		if t.Row == c.Row && t.Col == c.Col {
			return true
		}
	}
	return false
}
