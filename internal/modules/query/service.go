package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/machinechat/core/internal/models"
	"github.com/machinechat/core/internal/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ErrUpstream marks a completion-API failure; the handler maps it to 502.
var ErrUpstream = errors.New("completion API unavailable")

// NoDataAnswer is returned when no collection is relevant to the query.
const NoDataAnswer = "Sorry, I couldn't find relevant data."

// Service orchestrates one question: grammar correction, cache lookup,
// collection matching, retrieval, answer generation, and the audit log
// append.
type Service struct {
	store Store
	llm   Completer
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, completer Completer, logger *zap.Logger) *Service {
	return &Service{
		store: store,
		llm:   completer,
		log:   logger,
		now:   time.Now,
	}
}

// Answer processes a non-empty user query and returns the conversational
// answer. Cache hits replay the stored answer and timestamp without calling
// the completion API.
func (s *Service) Answer(ctx context.Context, rawQuery, requestID string) (*Answer, error) {
	corrected := s.correctGrammar(ctx, rawQuery)

	if cached, err := s.store.LookupQueryRecord(ctx, corrected); err != nil {
		// The cache is an optimization over the audit log; a lookup
		// failure falls through to generation.
		s.log.Warn("query cache lookup failed", zap.Error(err), zap.String("request_id", requestID))
	} else if cached != nil {
		return &Answer{
			Query:     cached.CacheKey(),
			Answer:    cached.Response,
			Timestamp: cached.Timestamp,
			Cached:    true,
		}, nil
	}

	known, err := s.store.CollectionNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover collections: %w", err)
	}

	matched := MatchCollections(corrected, known)
	if len(matched) == 0 {
		return s.finish(ctx, rawQuery, corrected, requestID, NoDataAnswer), nil
	}

	var filter bson.M
	if day, ok := ExtractDate(corrected, s.now()); ok {
		filter = DateFilter(day)
	}

	results := s.fetchDocuments(ctx, matched, filter)
	prompt := BuildAnswerPrompt(corrected, BuildContextBlock(results))

	text, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.log.Error("answer generation failed", zap.Error(err), zap.String("request_id", requestID))
		return nil, fmt.Errorf("%w: generate answer", ErrUpstream)
	}

	return s.finish(ctx, rawQuery, corrected, requestID, text), nil
}

// History returns one page of the query log, newest first.
func (s *Service) History(ctx context.Context, q pagination.Query) ([]models.QueryRecord, pagination.Meta, error) {
	recs, total, err := s.store.ListQueryRecords(ctx, q.Offset(), int64(q.Size))
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list query log: %w", err)
	}
	return recs, pagination.NewMeta(q, total), nil
}

// correctGrammar normalizes the raw query through the completion API. On
// failure the raw query is used as-is.
func (s *Service) correctGrammar(ctx context.Context, raw string) string {
	corrected, err := s.llm.Complete(ctx, buildCorrectionPrompt(raw))
	if err != nil {
		s.log.Warn("grammar correction failed, using raw query", zap.Error(err))
		return raw
	}
	if corrected == "" {
		return raw
	}
	return corrected
}

// finish appends the answered query to the log collection and assembles the
// response. The append is best effort: the answer has already been
// produced, so a log failure is recorded but not surfaced.
func (s *Service) finish(ctx context.Context, rawQuery, corrected, requestID, answer string) *Answer {
	ts := s.now().UTC()

	rec := &models.QueryRecord{
		Query:     rawQuery,
		Response:  answer,
		RequestID: requestID,
		Timestamp: ts,
	}
	if corrected != rawQuery {
		rec.CorrectedQuery = corrected
	}
	if err := s.store.InsertQueryRecord(ctx, rec); err != nil {
		s.log.Warn("query log append failed", zap.Error(err), zap.String("request_id", requestID))
	}

	return &Answer{Query: corrected, Answer: answer, Timestamp: ts}
}
