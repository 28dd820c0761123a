package memory

import (
	"time"

	"ai-canvas-be/pkg/artifact/stream"

	"github.com/patrickmn/go-cache"
)

// ArtifactRepository holds the live streaming state of documents currently
// being generated, keyed by document id. Clients that open a document
// mid-generation read the snapshot from here instead of the database.
type ArtifactRepository struct {
	cache *cache.Cache
}

func NewArtifactRepository() *ArtifactRepository {
	// Generations are short lived; an hour of retention covers stalled
	// streams, the janitor sweeps every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ArtifactRepository{
		cache: c,
	}
}

func (r *ArtifactRepository) Save(documentID string, machine *stream.Machine) {
	r.cache.Set(documentID, machine, cache.DefaultExpiration)
}

func (r *ArtifactRepository) Get(documentID string) (*stream.Machine, bool) {
	if x, found := r.cache.Get(documentID); found {
		return x.(*stream.Machine), true
	}
	return nil, false
}

func (r *ArtifactRepository) Delete(documentID string) {
	r.cache.Delete(documentID)
}
