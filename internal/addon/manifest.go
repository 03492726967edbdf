// Package addon exposes the subtitle pipeline as a Stremio subtitles addon
// and serves the stored subtitle files.
package addon

// Manifest describes the addon to Stremio clients.
type Manifest struct {
	ID          string    `json:"id"`
	Version     string    `json:"version"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Resources   []string  `json:"resources"`
	Types       []string  `json:"types"`
	IDPrefixes  []string  `json:"idPrefixes"`
	Catalogs    []Catalog `json:"catalogs"`
}

// Catalog is a Stremio catalog declaration. The addon declares none.
type Catalog struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// DefaultManifest returns the manifest for version.
func DefaultManifest(version string) Manifest {
	if version == "" {
		version = "0.0.0"
	}
	return Manifest{
		ID:          "community.titulkycom",
		Version:     version,
		Name:        "Titulky.com",
		Description: "Czech subtitles from titulky.com",
		Resources:   []string{"subtitles"},
		Types:       []string{"movie"},
		IDPrefixes:  []string{"tt"},
		Catalogs:    []Catalog{},
	}
}
