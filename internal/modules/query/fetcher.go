package query

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fetchLimit bounds how many of the newest records are pulled per
// collection.
const fetchLimit = 50

// fetchDocuments retrieves the newest matching records from each
// collection. A fetch error is isolated to its collection and rendered as
// an inline marker; collection order is preserved.
func (s *Service) fetchDocuments(ctx context.Context, collections []string, filter bson.M) []CollectionResult {
	results := make([]CollectionResult, 0, len(collections))

	for _, name := range collections {
		docs, err := s.store.FindRecent(ctx, name, filter, fetchLimit)
		if err != nil {
			s.log.Warn("collection fetch failed",
				zap.String("collection", name),
				zap.Error(err),
			)
			results = append(results, CollectionResult{
				Collection: name,
				Note:       fmt.Sprintf("Error fetching data from '%s'.", name),
			})
			continue
		}
		if len(docs) == 0 {
			results = append(results, CollectionResult{
				Collection: name,
				Note:       fmt.Sprintf("No data found in '%s'.", name),
			})
			continue
		}

		records := make([]map[string]interface{}, 0, len(docs))
		for _, doc := range docs {
			records = append(records, normalizeDocument(doc))
		}
		results = append(results, CollectionResult{Collection: name, Records: records})
	}

	return results
}

// normalizeDocument renders opaque database identifiers as printable text.
func normalizeDocument(doc bson.M) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for key, value := range doc {
		if id, ok := value.(primitive.ObjectID); ok {
			out[key] = id.Hex()
			continue
		}
		out[key] = value
	}
	return out
}
