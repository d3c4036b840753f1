package formatter

import (
	"encoding/json"

	"github.com/gnolang/scryer/match"
	"github.com/gnolang/scryer/syntax"
)

type jsonFile struct {
	File    string      `json:"file"`
	Matches []jsonMatch `json:"matches"`
}

type jsonMatch struct {
	Captures []jsonCapture `json:"captures"`
}

type jsonCapture struct {
	Name  string    `json:"name"`
	Kind  string    `json:"kind"`
	Text  string    `json:"text"`
	Start jsonPoint `json:"start"`
	End   jsonPoint `json:"end"`
}

type jsonPoint struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (r *Reporter) jsonMatch(m *match.Match) jsonMatch {
	out := jsonMatch{Captures: make([]jsonCapture, 0, len(m.Captures))}
	for _, c := range m.Captures {
		sp := c.Node.Span()
		out.Captures = append(out.Captures, jsonCapture{
			Name:  c.Name,
			Kind:  c.Node.Kind(),
			Text:  syntax.TextOrPlaceholder(c.Node, r.source),
			Start: jsonPoint{Row: sp.Start.Row, Column: sp.Start.Column},
			End:   jsonPoint{Row: sp.End.Row, Column: sp.End.Column},
		})
	}
	return out
}

// writeJSON writes the current file as a single line.
func (r *Reporter) writeJSON() error {
	d, err := json.Marshal(jsonFile{
		File:    displayPath(r.path),
		Matches: r.pending,
	})
	if err != nil {
		return err
	}
	d = append(d, '\n')
	_, err = r.w.Write(d)
	return err
}
