package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentEmbedding is one embedded chunk of a document version, used for
// semantic retrieval when suggesting related documents in chat.
type DocumentEmbedding struct {
	Id             uuid.UUID
	Chunk          string
	EmbeddingValue []float32
	DocumentId     uuid.UUID
	ChunkIndex     int
	CreatedAt      time.Time
}
