// Package board holds the value types shared by the rules-engine adapters,
// the game state machine and the presentation shell.
package board

import (
	"fmt"
	"strings"
)

// Size is the number of files (and ranks) on the board.
const Size = 8

// Color identifies a side.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

// Other returns the opposing side.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// PieceKind is a piece type without color.
type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = map[PieceKind]string{
	Pawn:   "p",
	Knight: "n",
	Bishop: "b",
	Rook:   "r",
	Queen:  "q",
	King:   "k",
}

// Letter returns the lowercase FEN letter of the kind, or "" for NoKind.
func (k PieceKind) Letter() string { return kindLetters[k] }

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// PromotionKinds lists the kinds a pawn may promote to, in prompt order.
var PromotionKinds = []PieceKind{Queen, Rook, Bishop, Knight}

// ParsePromotionKind normalizes a promotion token such as "queen", "Q" or "n".
// Only queen, rook, bishop and knight are accepted.
func ParsePromotionKind(token string) (PieceKind, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "q", "queen":
		return Queen, true
	case "r", "rook":
		return Rook, true
	case "b", "bishop":
		return Bishop, true
	case "n", "knight":
		return Knight, true
	default:
		return NoKind, false
	}
}

// Piece is a colored piece. The zero value is an empty square.
type Piece struct {
	Kind  PieceKind
	Color Color
}

// NoPiece marks an empty square.
var NoPiece = Piece{}

// Empty reports whether the piece marks an empty square.
func (p Piece) Empty() bool { return p.Kind == NoKind }

// Letter returns the FEN letter: uppercase for white, lowercase for black.
func (p Piece) Letter() string {
	l := p.Kind.Letter()
	if p.Color == White {
		return strings.ToUpper(l)
	}
	return l
}

var symbols = map[string]string{
	"K": "♔", "Q": "♕", "R": "♖", "B": "♗", "N": "♘", "P": "♙",
	"k": "♚", "q": "♛", "r": "♜", "b": "♝", "n": "♞", "p": "♟",
}

// Symbol returns the Unicode figurine of the piece, or "" for an empty square.
func (p Piece) Symbol() string { return SymbolFor(p.Letter()) }

// SymbolFor maps a FEN letter to its figurine.
func SymbolFor(letter string) string { return symbols[letter] }

// PieceFromLetter parses a single FEN piece letter.
func PieceFromLetter(letter string) (Piece, bool) {
	if len(letter) != 1 {
		return NoPiece, false
	}
	color := Black
	if upper := strings.ToUpper(letter); upper == letter {
		color = White
	}
	for kind, l := range kindLetters {
		if l == strings.ToLower(letter) {
			return Piece{Kind: kind, Color: color}, true
		}
	}
	return NoPiece, false
}

// Square is a board coordinate: File 0-7 = a-h, Rank 0-7 = 1-8.
type Square struct {
	File int
	Rank int
}

// Sq is shorthand for Square{File: file, Rank: rank}.
func Sq(file, rank int) Square { return Square{File: file, Rank: rank} }

// Valid reports whether both indexes are on the board.
func (s Square) Valid() bool {
	return s.File >= 0 && s.File < Size && s.Rank >= 0 && s.Rank < Size
}

// Index returns the a1=0 .. h8=63 square index used by the chess libraries.
func (s Square) Index() int { return s.Rank*Size + s.File }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string(rune('a'+s.File)) + string(rune('1'+s.Rank))
}

// ParseSquare parses algebraic coordinates such as "e4".
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	sq := Square{File: int(s[0] - 'a'), Rank: int(s[1] - '1')}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	return sq, nil
}

// Move is an engine move request. Promotion is NoKind for ordinary moves.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

// UCI encodes the move as "e2e4" or "a7a8q".
func (m Move) UCI() string {
	return m.From.String() + m.To.String() + m.Promotion.Letter()
}

func (m Move) String() string { return m.UCI() }

// ParseUCI decodes a four or five character UCI move.
func ParseUCI(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("invalid uci move %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("invalid uci move %q: %w", s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("invalid uci move %q: %w", s, err)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		kind, ok := ParsePromotionKind(s[4:5])
		if !ok {
			return Move{}, fmt.Errorf("invalid promotion in uci move %q", s)
		}
		m.Promotion = kind
	}
	return m, nil
}

// Grid is a display-ordered 8x8 matrix of FEN letters; "" marks an empty cell.
type Grid [Size][Size]string
