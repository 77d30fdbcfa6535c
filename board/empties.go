package board

import "fmt"

// ListEnd terminates iteration over an EmptyList. Cell 0 is border, so it
// doubles as the list sentinel.
const ListEnd Square = 0

// EmptyList is a doubly linked list of the empty squares, threaded through
// arrays indexed by square. Removing a square and restoring it in reverse
// order puts it back at exactly the position it held.
type EmptyList struct {
	prev [NumCells]Square
	next [NumCells]Square
	size int
}

// Reset rebuilds the list from b in Ranking order.
func (e *EmptyList) Reset(b *Board) {
	e.prev = [NumCells]Square{}
	e.next = [NumCells]Square{}
	e.size = 0
	last := ListEnd
	for _, sq := range Ranking {
		if b[sq] != Empty {
			continue
		}
		e.next[last] = sq
		e.prev[sq] = last
		last = sq
		e.size++
	}
	e.next[last] = ListEnd
	e.prev[ListEnd] = last
}

// First returns the best-ranked empty square, or ListEnd.
func (e *EmptyList) First() Square {
	return e.next[ListEnd]
}

func (e *EmptyList) Next(sq Square) Square {
	return e.next[sq]
}

func (e *EmptyList) Len() int {
	return e.size
}

// Remove unlinks sq. It must currently be in the list.
func (e *EmptyList) Remove(sq Square) {
	e.next[e.prev[sq]] = e.next[sq]
	e.prev[e.next[sq]] = e.prev[sq]
	e.size--
}

// Restore relinks sq at its old position. Restores must happen in the
// reverse order of removals.
func (e *EmptyList) Restore(sq Square) {
	e.next[e.prev[sq]] = sq
	e.prev[e.next[sq]] = sq
	e.size++
}

// Squares appends the listed squares to dst in list order.
func (e *EmptyList) Squares(dst []Square) []Square {
	for sq := e.First(); sq != ListEnd; sq = e.Next(sq) {
		dst = append(dst, sq)
	}
	return dst
}

// Validate checks that the list holds exactly the empty squares of b.
func (e *EmptyList) Validate(b *Board) error {
	seen := map[Square]bool{}
	n := 0
	for sq := e.First(); sq != ListEnd; sq = e.Next(sq) {
		if b[sq] != Empty {
			return fmt.Errorf("square %v in empty list holds %v", sq, b[sq])
		}
		if seen[sq] {
			return fmt.Errorf("square %v listed twice", sq)
		}
		seen[sq] = true
		n++
		if n > Dim*Dim {
			return fmt.Errorf("empty list does not terminate")
		}
	}
	if n != e.size {
		return fmt.Errorf("empty list has %d nodes but size %d", n, e.size)
	}
	if want := Dim*Dim - b.Discs(); n != want {
		return fmt.Errorf("empty list has %d nodes, board has %d empties", n, want)
	}
	return nil
}

// LibertyMap counts, per square, the empty on-board neighbours.
type LibertyMap [NumCells]int8

func (l *LibertyMap) Reset(b *Board) {
	*l = LibertyMap{}
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			sq := SquareAt(x, y)
			for _, d := range Directions {
				if b[int(sq)+d] == Empty {
					l[sq]++
				}
			}
		}
	}
}

// Place records that sq was filled.
func (l *LibertyMap) Place(sq Square) {
	for _, d := range Directions {
		l[int(sq)+d]--
	}
}

// Lift records that sq was emptied again.
func (l *LibertyMap) Lift(sq Square) {
	for _, d := range Directions {
		l[int(sq)+d]++
	}
}

// HasNeighbour reports whether at least one neighbour of sq is occupied.
// A square with no occupied neighbour can never be a legal move.
func (l *LibertyMap) HasNeighbour(sq Square) bool {
	return l[sq] < FullLiberties[sq]
}
