package cliutil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/game"
)

// ReadFilterState loads a filter state file. An empty path is the empty
// state.
func ReadFilterState(path string) (filter.State, error) {
	if path == "" {
		return filter.State{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return filter.State{}, err
	}
	return filter.ParseState(b)
}

// ReadGames decodes a JSON array of games or one game per line. Games
// without an id get a random one.
func ReadGames(r io.Reader) ([]game.Game, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var games []game.Game
	if first == '[' {
		if err := json.NewDecoder(br).Decode(&games); err != nil {
			return nil, fmt.Errorf("decode games: %w", err)
		}
	} else {
		dec := json.NewDecoder(br)
		for n := 1; ; n++ {
			var g game.Game
			err := dec.Decode(&g)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("decode game %d: %w", n, err)
			}
			games = append(games, g)
		}
	}
	for i := range games {
		if games[i].ID == "" {
			games[i].ID = uuid.NewString()
		}
	}
	return games, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			return b[0], nil
		}
		if _, err := br.Discard(1); err != nil {
			return 0, err
		}
	}
}
