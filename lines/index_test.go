package lines

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/othello/board"
)

func cfgOf(s string) uint16 {
	var cfg uint16
	for p, ch := range s {
		var c board.Cell
		switch ch {
		case 'X':
			c = board.Black
		case 'O':
			c = board.White
		}
		cfg |= uint16(c) << (2 * p)
	}
	return cfg
}

func TestLegalPositions(t *testing.T) {
	is := is.New(t)
	cfg := cfgOf("..OX....")
	is.Equal(LegalPositions(cfg, board.Black), uint8(1<<1))
	is.Equal(LegalPositions(cfg, board.White), uint8(1<<4))

	cfg = cfgOf("XOOOO.X.")
	is.Equal(LegalPositions(cfg, board.Black), uint8(1<<5))
	is.Equal(LegalPositions(cfg, board.White), uint8(0))

	// Nothing to bracket.
	is.Equal(LegalPositions(cfgOf("........"), board.Black), uint8(0))
	is.Equal(LegalPositions(cfgOf("OOOOOOO."), board.Black), uint8(0))
	// Invalid cell values never produce moves.
	is.Equal(oracle[0xffff], uint16(0))
}

func TestStableEdgeDiscs(t *testing.T) {
	is := is.New(t)
	is.Equal(cfgOf("OXXXXXXO"), uint16(0x9556))
	is.Equal(StableEdgeDiscs(0x9556, board.White), 6)
	is.Equal(StableEdgeDiscs(0xa556, board.White), 5)
	is.Equal(StableEdgeDiscs(0x955a, board.White), 5)
	is.Equal(StableEdgeDiscs(0x9aaa, board.White), 1)
	is.Equal(StableEdgeDiscs(cfgOf("OXOXXXXO"), board.White), 0)
	is.Equal(StableEdgeDiscs(cfgOf("XOOOXXXX"), board.Black), 3)
	is.Equal(StableEdgeDiscs(cfgOf("XOOOXXX."), board.Black), 0)
}

func TestIndexMatchesBoard(t *testing.T) {
	is := is.New(t)
	b := board.New(false)
	var ix Index
	ix.Reset(b)
	is.Equal(ix.Row(3), cfgOf("...OX..."))
	is.Equal(ix.Row(4), cfgOf("...XO..."))
	is.Equal(ix.Column(3), cfgOf("...OX..."))

	// Black's four opening moves, and nothing else.
	legal := 0
	for n := 0; n < 64; n++ {
		sq := board.To91(n)
		if b[sq] == board.Empty && ix.Legal(sq, board.Black) {
			legal++
		}
	}
	is.Equal(legal, 4)
	is.True(ix.Legal(board.To91(37), board.Black))
	is.True(!ix.Legal(board.To91(37), board.White))

	// place, flip and remove round-trip
	start := ix
	sq := board.To91(37)
	ix.Place(sq, board.Black)
	ix.Flip(board.SquareAt(4, 4))
	b2 := *b
	b2[sq] = board.Black
	b2[board.SquareAt(4, 4)] = board.Black
	var fresh Index
	fresh.Reset(&b2)
	is.Equal(ix, fresh)
	ix.Flip(board.SquareAt(4, 4))
	ix.Remove(sq)
	is.Equal(ix, start)
}

func TestLinesThroughSquare(t *testing.T) {
	is := is.New(t)
	is.Equal(Lines(10), [4]uint8{0, 8, 23, 31})
	is.Equal(Lines(80), [4]uint8{7, 15, 23, 45})
	is.Equal(Lines(17), [4]uint8{0, 15, 30, 38})
	is.Equal(Lines(73), [4]uint8{7, 8, 16, 38})
}
