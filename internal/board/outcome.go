package board

// Outcome classifies a position after a committed move.
type Outcome uint8

const (
	Ongoing Outcome = iota
	WhiteWon
	BlackWon
	Stalemate
	ThreefoldRepetition
	InsufficientMaterial
	FiftyMoveRule
)

// Terminal reports whether the game is over.
func (o Outcome) Terminal() bool { return o != Ongoing }

// Draw reports whether the outcome is one of the drawn results.
func (o Outcome) Draw() bool {
	switch o {
	case Stalemate, ThreefoldRepetition, InsufficientMaterial, FiftyMoveRule:
		return true
	}
	return false
}

// Winner returns the winning side, or NoColor.
func (o Outcome) Winner() Color {
	switch o {
	case WhiteWon:
		return White
	case BlackWon:
		return Black
	}
	return NoColor
}

// PGNResult returns the PGN result token.
func (o Outcome) PGNResult() string {
	switch {
	case o == WhiteWon:
		return "1-0"
	case o == BlackWon:
		return "0-1"
	case o.Draw():
		return "1/2-1/2"
	default:
		return "*"
	}
}

func (o Outcome) String() string {
	switch o {
	case WhiteWon:
		return "white_won"
	case BlackWon:
		return "black_won"
	case Stalemate:
		return "stalemate"
	case ThreefoldRepetition:
		return "threefold_repetition"
	case InsufficientMaterial:
		return "insufficient_material"
	case FiftyMoveRule:
		return "fifty_move_rule"
	default:
		return "ongoing"
	}
}

// ParseOutcome is the inverse of Outcome.String; unknown text maps to Ongoing.
func ParseOutcome(s string) Outcome {
	for o := Ongoing; o <= FiftyMoveRule; o++ {
		if o.String() == s {
			return o
		}
	}
	return Ongoing
}
