package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps an io.Reader with automatic character encoding detection and conversion to UTF-8.
// The upstream site serves Windows-1250 as well as UTF-8 pages, so every HTML body is passed
// through here before parsing with goquery.
//
// The charset is detected from:
// 1. the contentType header value, when given
// 2. HTML <meta charset="..."> or <meta http-equiv="Content-Type"> tags
// 3. Byte order marks (BOM)
// 4. Heuristic detection if none of the above are present
func NewUTF8Reader(body io.Reader, contentType string) (io.Reader, error) {
	return charset.NewReader(body, contentType)
}

// NewDocument decodes body to UTF-8 and parses it as an HTML document.
func NewDocument(body []byte, contentType string) (*goquery.Document, error) {
	reader, err := NewUTF8Reader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode HTML charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
