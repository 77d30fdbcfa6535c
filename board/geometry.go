package board

// Directions lists the eight neighbour offsets in the padded layout. Bit i
// of a DirMask entry enables Directions[i].
var Directions = [8]int{1, -1, 8, -8, 9, -9, 10, -10}

// DirMask holds, per square, the directions in which a flip could ever be
// bracketed. Squares next to an edge never look off the board.
var DirMask [NumCells]uint8

// FullLiberties is the number of on-board neighbours of each square: 3 for
// corners, 5 on the edges and 8 in the interior.
var FullLiberties [NumCells]int8

// Corners in a1, h1, a8, h8 order.
var Corners = [4]Square{10, 17, 73, 80}

// XSquares are diagonally adjacent to Corners[i].
var XSquares = [4]Square{20, 25, 65, 70}

// CornerDirs are the two edge directions leaving Corners[i].
var CornerDirs = [4][2]int{{1, 9}, {-1, 9}, {1, -9}, {-1, -9}}

// CSquares[i][j] is the edge square next to Corners[i] along CornerDirs[i][j].
var CSquares = [4][2]Square{{11, 19}, {16, 26}, {74, 64}, {79, 71}}

// FarCorners[i][j] is the corner at the other end of the edge that starts
// at Corners[i] and runs along CornerDirs[i][j].
var FarCorners = [4][2]Square{{17, 73}, {10, 80}, {80, 10}, {73, 17}}

// Ranking orders every square from most to least desirable. The empty
// square registry is built in this order so move generation visits good
// squares first.
var Ranking = [64]Square{
	50, 49, 41, 40,
	80, 73, 17, 10,
	78, 75, 62, 55, 35, 28, 15, 12,
	60, 57, 33, 30,
	77, 76, 53, 46, 44, 37, 14, 13,
	59, 58, 51, 48, 42, 39, 32, 31,
	68, 67, 52, 47, 43, 38, 23, 22,
	69, 66, 61, 56, 34, 29, 24, 21,
	79, 74, 71, 64, 26, 19, 16, 11,
	70, 65, 25, 20,
}

var dirMaskRows = [8][8]uint8{
	{81, 81, 87, 87, 87, 87, 22, 22},
	{81, 81, 87, 87, 87, 87, 22, 22},
	{121, 121, 255, 255, 255, 255, 182, 182},
	{121, 121, 255, 255, 255, 255, 182, 182},
	{121, 121, 255, 255, 255, 255, 182, 182},
	{121, 121, 255, 255, 255, 255, 182, 182},
	{41, 41, 171, 171, 171, 171, 162, 162},
	{41, 41, 171, 171, 171, 171, 162, 162},
}

// CornerIndex returns i such that Corners[i] == sq, or -1.
func CornerIndex(sq Square) int {
	switch sq {
	case 10:
		return 0
	case 17:
		return 1
	case 73:
		return 2
	case 80:
		return 3
	}
	return -1
}

func IsCorner(sq Square) bool {
	return CornerIndex(sq) >= 0
}

func init() {
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			sq := SquareAt(x, y)
			DirMask[sq] = dirMaskRows[y][x]
			var n int8
			for _, d := range Directions {
				if Square(int(sq) + d).OnBoard() {
					n++
				}
			}
			FullLiberties[sq] = n
		}
	}
}
