// Command boardshot writes a board image for a FEN and optional moves, for a
// game from the result archive, or fetches the current image from a running
// spectator feed. With -recent it lists the newest archived games.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/archive"
	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/enginebuilder"
	"github.com/park285/cheese-board/internal/game"
	"github.com/park285/cheese-board/internal/render"
	"github.com/park285/cheese-board/internal/spectate"
)

func main() {
	var (
		fen      = flag.String("fen", "", "start position (default: standard)")
		moves    = flag.String("moves", "", "comma or space separated UCI moves to play first")
		engName  = flag.String("engine", enginebuilder.Default, "rules engine: "+strings.Join(enginebuilder.Names(), ", "))
		out      = flag.String("o", "board.png", "output file")
		asSVG    = flag.Bool("svg", false, "write SVG instead of PNG")
		reversed = flag.Bool("reversed", false, "draw black at the bottom")
		size     = flag.Int("square", render.DefaultSquareSize, "square size in pixels")
		url      = flag.String("url", "", "spectator feed base URL; when set the image is fetched instead")
		dbURL    = flag.String("db", os.Getenv("DATABASE_URL"), "result archive (postgres:// or sqlite3://path)")
		recent   = flag.Int("recent", 0, "list the newest N archived games and exit")
		gameID   = flag.String("game", "", "draw the final position of an archived game")
		pgnOut   = flag.String("pgn", "", "with -game, also write its PGN to this file")
	)
	flag.Parse()

	if *url != "" {
		fetch(*url, *out)
		return
	}

	var g *game.Game
	if *recent > 0 || *gameID != "" {
		repo, err := archive.Open(*dbURL)
		if err != nil {
			log.Fatalf("archive: %v", err)
		}
		defer func() { _ = repo.Close() }()
		if *recent > 0 {
			listRecent(repo, *recent)
			return
		}
		g = fromArchive(repo, *gameID, *pgnOut)
	} else {
		eng, err := enginebuilder.New(*engName)
		if err != nil {
			log.Fatalf("engine: %v", err)
		}
		g, err = game.Restore(eng, *fen, strings.FieldsFunc(*moves, func(r rune) bool { return r == ',' || r == ' ' }))
		if err != nil {
			log.Fatalf("position: %v", err)
		}
	}
	g.SetReversed(*reversed)

	opts := render.Options{Reversed: *reversed, Title: g.FEN(), Turn: turnLine(g)}
	if hist := g.History(); len(hist) > 0 {
		if mv, err := board.ParseUCI(hist[len(hist)-1]); err == nil {
			opts.LastMove = &mv
		}
	}

	var (
		data []byte
		err  error
	)
	if *asSVG {
		var buf bytes.Buffer
		render.BoardSVG(&buf, g.Grid(), opts, *size)
		data = buf.Bytes()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		data, err = render.New(*size).RenderPNG(ctx, g.Grid(), opts)
		cancel()
		if err != nil {
			log.Fatalf("render: %v", err)
		}
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("write: %v", err)
	}
	log.Printf("wrote %s (%d bytes) outcome=%s", *out, len(data), g.Outcome())
}

func turnLine(g *game.Game) string {
	if o := g.Outcome(); o.Terminal() {
		return o.String()
	}
	return g.Turn().String() + " to move"
}

func listRecent(repo *archive.Repository, limit int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	games, err := repo.Recent(ctx, limit)
	if err != nil {
		log.Fatalf("recent: %v", err)
	}
	for _, r := range games {
		fmt.Printf("%s  %s  %-7s %3d plies  %-22s %s\n",
			r.ID, r.EndedAt.Format("2006-01-02 15:04"), r.Outcome.PGNResult(), len(r.MovesUCI), r.Outcome, r.Engine)
	}
}

// fromArchive replays an archived game on the engine it was played with.
func fromArchive(repo *archive.Repository, id, pgnOut string) *game.Game {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := repo.Get(ctx, id)
	if err != nil {
		log.Fatalf("archived game %s: %v", id, err)
	}
	name := res.Engine
	if name == "" {
		name = enginebuilder.Default
	}
	eng, err := enginebuilder.New(name)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	g, err := game.Restore(eng, res.StartFEN, res.MovesUCI)
	if err != nil {
		log.Fatalf("replay %s: %v", id, err)
	}
	if pgnOut != "" {
		pgn, err := repo.PGN(ctx, id)
		if err != nil {
			log.Fatalf("pgn: %v", err)
		}
		if err := os.WriteFile(pgnOut, []byte(pgn+"\n"), 0o644); err != nil {
			log.Fatalf("write pgn: %v", err)
		}
		log.Printf("wrote %s", pgnOut)
	}
	return g
}

func fetch(baseURL, out string) {
	client := spectate.NewClient(baseURL, spectate.WithTimeout(8*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st, err := client.State(ctx)
	if err != nil {
		log.Fatalf("/state error: %v", err)
	}
	log.Printf("/state ok: session=%s engine=%s ply=%d outcome=%s fen=%s", st.SessionID, st.Engine, st.Ply, st.Outcome, st.FEN)

	data, err := client.BoardPNG(ctx)
	if err != nil {
		log.Fatalf("/board.png error: %v", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		log.Fatalf("write: %v", err)
	}
	log.Printf("wrote %s (%d bytes)", out, len(data))
}
