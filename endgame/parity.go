package endgame

import "github.com/domino14/othello/board"

// setUpParity splits the empty squares into regions and records, for each
// region, whether it holds an odd number of empties. A region gets one bit;
// one backward and one forward pass merge most regions the first scan split.
func (s *Solver) setUpParity() {
	b := &s.pos.Board
	h := &s.holeID
	k := uint32(1)
	for i := 10; i <= 80; i++ {
		switch {
		case b[i] != board.Empty:
			h[i] = 0
		case b[i-10] == board.Empty:
			h[i] = h[i-10]
		case b[i-9] == board.Empty:
			h[i] = h[i-9]
		case b[i-8] == board.Empty:
			h[i] = h[i-8]
		case b[i-1] == board.Empty:
			h[i] = h[i-1]
		default:
			h[i] = k
			k <<= 1
		}
	}
	for i := 80; i >= 10; i-- {
		if b[i] != board.Empty {
			continue
		}
		k = h[i]
		for _, d := range [...]int{10, 9, 8, 1} {
			if b[i+d] == board.Empty {
				h[i] = min(k, h[i+d])
			}
		}
	}
	for i := 10; i <= 80; i++ {
		if b[i] != board.Empty {
			continue
		}
		k = h[i]
		for _, d := range [...]int{10, 9, 8, 1} {
			if b[i-d] == board.Empty {
				h[i] = min(k, h[i-d])
			}
		}
	}
	s.parities = 0
	for i := 10; i <= 80; i++ {
		s.parities ^= h[i]
	}
}
