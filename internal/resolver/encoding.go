package resolver

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// toUTF8 converts subtitle text that is not valid UTF-8 from Windows-1250,
// the code page Czech subtitles are usually authored in.
func toUTF8(content []byte) []byte {
	if utf8.Valid(content) {
		return content
	}
	decoded, err := charmap.Windows1250.NewDecoder().Bytes(content)
	if err != nil {
		return content
	}
	return decoded
}
