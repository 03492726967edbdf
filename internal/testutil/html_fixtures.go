package testutil

import (
	"fmt"
	"strings"
)

// SearchRowOptions contains options for generating a search result row
type SearchRowOptions struct {
	Title   string
	Href    string
	Release string // optional second cell, e.g. "1080p.BluRay"
}

// GenerateSearchResultsHTML generates a full-text search results page with
// one table row per entry, followed by a forum block holding a quoted comment
// and a request link that must never be ranked.
func GenerateSearchResultsHTML(rows []SearchRowOptions) string {
	var sb strings.Builder
	sb.WriteString(`<html>
<head><meta charset="utf-8"><title>Titulky.com - vyhledávání</title></head>
<body>
<div id="menu"><a href="/">Úvod</a> <a href="/pozadavky.htm">Požadavky</a></div>
<table class="soupis" width="100%">
	<tr><th>Název</th><th>Verze</th></tr>
`)
	for _, row := range rows {
		fmt.Fprintf(&sb, "\t<tr class=\"r\"><td><a href=\"%s\">%s</a></td><td>%s</td></tr>\n", row.Href, row.Title, row.Release)
	}
	sb.WriteString(`</table>
<div class="forum">
	<a href="/forum/vlakno-123.htm">Matrix napsal: skvělé titulky, díky</a>
	<a href="/pozadavek-matrix-99.htm">The Matrix (1999)</a>
</div>
</body>
</html>`)
	return sb.String()
}

// DownloadLinkOptions contains options for generating a download link on a detail page
type DownloadLinkOptions struct {
	Href  string
	Label string
	Class string
}

// GenerateDetailPageHTML generates a subtitle detail page with the given download links
func GenerateDetailPageHTML(title string, links []DownloadLinkOptions) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<html>
<head><meta charset="utf-8"><title>%s - titulky ke stažení</title></head>
<body>
<h1>%s</h1>
<div class="detail">
	<a href="/">Zpět na hlavní stránku</a>
	<a href="/profil-uzivatele.htm">Autor</a>
`, title, title)
	for _, link := range links {
		fmt.Fprintf(&sb, "\t<a class=\"%s\" href=\"%s\">%s</a>\n", link.Class, link.Href, link.Label)
	}
	sb.WriteString(`</div>
</body>
</html>`)
	return sb.String()
}

// GenerateInterstitialHTML generates the countdown page the site returns in place
// of a file. bodyHTML is embedded as-is so tests can place the download id in
// links, buttons or scripts.
func GenerateInterstitialHTML(bodyHTML string) string {
	return `<html>
<head><meta charset="utf-8"><title>Stahování titulků</title></head>
<body>
<div class="countdown">Stahování začne za <span id="cd">12</span> sekund.</div>
` + bodyHTML + `
</body>
</html>`
}

// GenerateHTMLWithBody wraps bodyHTML in a minimal HTML document
func GenerateHTMLWithBody(bodyHTML string) string {
	return fmt.Sprintf("<html><body>%s</body></html>", bodyHTML)
}

// GenerateEmptyHTML generates an empty HTML page
func GenerateEmptyHTML() string {
	return "<html><body></body></html>"
}
