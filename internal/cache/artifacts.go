package cache

import (
	"errors"

	"github.com/titulkysubs/titulkysubs/internal/models"
)

// ArtifactGroup is the metric label and key namespace of the artifact cache.
const ArtifactGroup = "artifacts"

// ArtifactFiles reports on the stored subtitle files that artifacts point at.
type ArtifactFiles interface {
	Exists(name string) bool
	URL(name string) string
}

// ArtifactStore caches resolved subtitles by external id. A hit is served
// only while its file is still on disk, and its URL is rebuilt from the
// current public base on every hit.
type ArtifactStore struct {
	cache Cache
	files ArtifactFiles
	group string
}

// NewArtifactStore stores artifacts in c and validates them against files.
func NewArtifactStore(c Cache, files ArtifactFiles) *ArtifactStore {
	return &ArtifactStore{cache: c, files: files, group: ArtifactGroup}
}

// Get returns the artifact cached for externalID. Entries whose file has
// been removed are dropped and counted as stale.
func (s *ArtifactStore) Get(externalID string) (*models.SubtitleArtifact, bool) {
	artifact, ok := GetJSON[models.SubtitleArtifact](s.cache, externalID)
	if !ok {
		return nil, false
	}
	if artifact.Filename == "" || !s.files.Exists(artifact.Filename) {
		s.cache.Delete(externalID)
		StaleTotal.WithLabelValues(s.group).Inc()
		return nil, false
	}
	artifact.URL = s.files.URL(artifact.Filename)
	return &artifact, true
}

// Put caches artifact for externalID. Artifacts without a stored file are
// rejected since they could never be served.
func (s *ArtifactStore) Put(externalID string, artifact *models.SubtitleArtifact) error {
	if artifact == nil || artifact.Filename == "" {
		return errors.New("cache: artifact has no stored file")
	}
	return SetJSON(s.cache, externalID, artifact)
}
