package lines

import "github.com/domino14/othello/board"

// oracle maps a line configuration to its legal positions: the low byte
// for black, the high byte for white. Configurations containing the
// invalid cell value 3 map to 0.
var oracle [1 << 16]uint16

// stableEdge counts the discs of one colour on a full edge that are
// bracketed on both sides by the other colour's contiguous run from each
// corner. It is indexed by the edge configuration with white corners.
var stableEdge [1 << 16]int8

func init() {
	var cells [8]board.Cell
	for cfg := 0; cfg < 1<<16; cfg++ {
		valid := true
		for p := 0; p < 8; p++ {
			cells[p] = board.Cell(cfg >> (2 * p) & 3)
			if cells[p] == board.OutOfBounds {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		var v uint16
		for p := 0; p < 8; p++ {
			if cells[p] != board.Empty {
				continue
			}
			if bracketsInLine(&cells, p, board.Black) {
				v |= 1 << p
			}
			if bracketsInLine(&cells, p, board.White) {
				v |= 1 << (8 + p)
			}
		}
		oracle[cfg] = v
	}

	// W B..B W runs: a black block from start to end, white everywhere else.
	for start := 1; start <= 6; start++ {
		for end := start; end <= 6; end++ {
			var cfg uint16
			for p := 0; p < 8; p++ {
				c := board.White
				if p >= start && p <= end {
					c = board.Black
				}
				cfg |= uint16(c) << (2 * p)
			}
			stableEdge[cfg] = int8(end - start + 1)
		}
	}
}

func bracketsInLine(cells *[8]board.Cell, p int, c board.Cell) bool {
	opp := c.Opponent()
	for _, d := range [2]int{-1, 1} {
		i := p + d
		if i < 0 || i > 7 || cells[i] != opp {
			continue
		}
		for i >= 0 && i <= 7 && cells[i] == opp {
			i += d
		}
		if i >= 0 && i <= 7 && cells[i] == c {
			return true
		}
	}
	return false
}

// LegalPositions returns the positions in a line where c can play, as a
// bitmask with bit p set for position p.
func LegalPositions(cfg uint16, c board.Cell) uint8 {
	return uint8(oracle[cfg] >> ((uint(c) - 1) * 8))
}

// StableEdgeDiscs looks up a full edge whose two corners hold the same
// colour. It returns the number of discs of the other colour that can no
// longer be flipped, or 0 if the edge does not match the pattern.
func StableEdgeDiscs(cfg uint16, cornerColour board.Cell) int {
	if cornerColour == board.Black {
		cfg ^= 0xffff
	}
	return int(stableEdge[cfg])
}
