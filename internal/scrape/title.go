package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadhunt-engine/internal/scrape/util"
)

// Title returns the document's <title>, falling back to og:title and then
// the first <h1>. Empty when none is present.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if t := util.CleanText(doc.Find("head title").First().Text()); t != "" {
		return t
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t := util.CleanText(og); t != "" {
			return t
		}
	}
	return util.CleanText(doc.Find("h1").First().Text())
}
