package query

import (
	"context"
	"time"

	"github.com/machinechat/core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Store is the slice of the document store the query module consumes.
// Implemented by internal/database.
type Store interface {
	CollectionNames(ctx context.Context) ([]string, error)
	FindRecent(ctx context.Context, collection string, filter bson.M, limit int64) ([]bson.M, error)
	LookupQueryRecord(ctx context.Context, key string) (*models.QueryRecord, error)
	InsertQueryRecord(ctx context.Context, rec *models.QueryRecord) error
	ListQueryRecords(ctx context.Context, offset, limit int64) ([]models.QueryRecord, int64, error)
}

// Completer is the completion API surface the query module consumes.
// Implemented by internal/pkg/llm.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CollectionResult holds the per-collection outcome of a fetch: either
// records, or a note (the "no data" marker or an inline error marker).
type CollectionResult struct {
	Collection string
	Records    []map[string]interface{}
	Note       string
}

// Answer is the outcome of one answered question.
type Answer struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
	Cached    bool      `json:"-"`
}

type getAnswerDTO struct {
	Query string `json:"query"`
}
