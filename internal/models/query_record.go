package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QueryLogCollection is the collection holding the query/answer audit log.
// Records double as an exact-match answer cache.
const QueryLogCollection = "query_responses"

// QueryRecord is one answered question. Insert-only, never mutated.
type QueryRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Query          string             `bson:"query" json:"query"`
	CorrectedQuery string             `bson:"corrected_query,omitempty" json:"corrected_query,omitempty"`
	Response       string             `bson:"response" json:"response"`
	RequestID      string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

// CacheKey is the text used for cache lookups and as the canonical stored
// query: the corrected form when grammar correction succeeded, else the raw
// query.
func (r *QueryRecord) CacheKey() string {
	if r.CorrectedQuery != "" {
		return r.CorrectedQuery
	}
	return r.Query
}
