// Package opening names the ECO opening reached by a game played from the
// standard initial position.
package opening

import (
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"

	"github.com/park285/cheese-board/internal/engine"
)

var (
	bookOnce sync.Once
	book     *opening.BookECO
)

func ecoBook() *opening.BookECO {
	bookOnce.Do(func() { book = opening.NewBookECO() })
	return book
}

type Info struct {
	Code  string
	Title string
}

func (i Info) String() string {
	if i.Code == "" {
		return ""
	}
	return i.Code + " " + i.Title
}

// Classify returns the most specific opening matching the UCI moves. Games
// from a custom position, or lines the book does not know, report false.
func Classify(startFEN string, moves []string) (Info, bool) {
	if fen := strings.TrimSpace(startFEN); fen != "" && fen != "startpos" && fen != engine.StartingFEN {
		return Info{}, false
	}
	if len(moves) == 0 {
		return Info{}, false
	}
	g := nchess.NewGame()
	for _, mv := range moves {
		if err := g.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return Info{}, false
		}
	}
	b := ecoBook()
	if b == nil {
		return Info{}, false
	}
	eco := b.Find(g.Moves())
	if eco == nil {
		return Info{}, false
	}
	return Info{Code: eco.Code(), Title: eco.Title()}, true
}
