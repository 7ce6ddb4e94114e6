package moviefixture

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// Detail is a movie with its overview rendered to safe HTML.
type Detail struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	ReleaseDate  string   `json:"release_date"`
	Rating       float64  `json:"rating"`
	Genres       []string `json:"genres"`
	OverviewHTML string   `json:"overview_html"`
}

func newDetail(m Movie) Detail {
	return Detail{
		ID:           m.ID,
		Title:        m.Title,
		ReleaseDate:  m.ReleaseDate,
		Rating:       m.Rating,
		Genres:       m.Genres,
		OverviewHTML: string(renderOverview([]byte(m.Overview))),
	}
}

var overviewPolicy = bluemonday.UGCPolicy()

// renderOverview converts a Markdown overview to sanitized HTML.
func renderOverview(md []byte) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(md)

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})
	return overviewPolicy.SanitizeBytes(markdown.Render(doc, renderer))
}
