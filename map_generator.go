package bombarena

// BreakableChance is the probability that a free interior cell starts as a
// breakable block.
const BreakableChance = 0.6

// GenerateMap builds a fresh arena using the process-wide random source.
func GenerateMap() Grid {
	return GenerateMapFrom(DefaultRandom)
}

// GenerateMapFrom builds a fresh arena: walls on the border and on every
// (even, even) cell, breakable blocks on the remaining interior cells with
// probability BreakableChance, and the spawn safe zones forced empty.
func GenerateMapFrom(rng RandomSource) Grid {
	var g Grid

	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if isFixedWall(row, col) {
				g[row][col] = TileWall
				continue
			}
			if rng.Float64() < BreakableChance {
				g[row][col] = TileBreakable
			}
		}
	}

	for _, c := range SafeZones {
		g[c.Row][c.Col] = TileEmpty
	}

	return g
}

func isFixedWall(row, col int) bool {
	if row == 0 || row == Rows-1 || col == 0 || col == Cols-1 {
		return true
	}
	return row%2 == 0 && col%2 == 0
}
