package models

// SubtitleArtifact is an extracted subtitle file made servable to callers.
type SubtitleArtifact struct {
	ID       string
	URL      string
	Lang     string
	Filename string
	Strategy string
}

// Subtitle is a single entry of the public subtitles response.
type Subtitle struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Lang string `json:"lang"`
}

// SubtitlesResponse is the public response of a subtitle lookup. Subtitles is
// never nil so it always encodes as a JSON array.
type SubtitlesResponse struct {
	Subtitles []Subtitle `json:"subtitles"`
}

// EmptySubtitles returns a response with no subtitles.
func EmptySubtitles() SubtitlesResponse {
	return SubtitlesResponse{Subtitles: []Subtitle{}}
}

// NewSubtitlesResponse wraps artifact as a single-element response.
func NewSubtitlesResponse(artifact *SubtitleArtifact) SubtitlesResponse {
	if artifact == nil {
		return EmptySubtitles()
	}
	return SubtitlesResponse{Subtitles: []Subtitle{{ID: artifact.ID, URL: artifact.URL, Lang: artifact.Lang}}}
}
