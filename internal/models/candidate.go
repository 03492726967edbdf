package models

// SearchCandidate is a search-result anchor hypothesized to point at a title detail page.
type SearchCandidate struct {
	DisplayText string `json:"displayText"`
	TargetURL   string `json:"targetUrl"`
	Score       int    `json:"score"`
	SourceRule  string `json:"sourceRule"` // name of the extraction rule that produced it
}

// Movie is the canonical title and year returned by a metadata lookup.
type Movie struct {
	ExternalID string `json:"externalId"`
	Title      string `json:"title"`
	Year       string `json:"year"`
}
