package query

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestExtractDateKeywords(t *testing.T) {
	now := time.Date(2025, 3, 15, 13, 45, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"today", "show me today's alarms", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"yesterday", "what happened yesterday", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"this month", "downtime for this month", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDate(tt.text, now)
			if !ok {
				t.Fatalf("ExtractDate(%q) found no date", tt.text)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ExtractDate(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractDateKeywordWinsOverPattern(t *testing.T) {
	now := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

	got, ok := ExtractDate("compare today with 25-12-2024", now)
	if !ok {
		t.Fatal("expected a date")
	}
	want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want keyword date %v", got, want)
	}
}

func TestExtractDateNumericPattern(t *testing.T) {
	now := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

	got, ok := ExtractDate("alarms on 25-12-2024 please", now)
	if !ok {
		t.Fatal("expected a date")
	}
	want := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractDateNone(t *testing.T) {
	now := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

	if _, ok := ExtractDate("what is the current oee", now); ok {
		t.Error("expected no date in plain text")
	}
}

func TestDateFilterCoversAllTimestampFields(t *testing.T) {
	day := time.Date(2024, 12, 25, 10, 30, 0, 0, time.UTC)

	filter := DateFilter(day)
	clauses, ok := filter["$or"].(bson.A)
	if !ok {
		t.Fatalf("filter missing $or: %v", filter)
	}
	if len(clauses) != len(timestampFields) {
		t.Fatalf("got %d clauses, want %d", len(clauses), len(timestampFields))
	}

	start := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	for i, field := range timestampFields {
		clause := clauses[i].(bson.M)
		window, ok := clause[field].(bson.M)
		if !ok {
			t.Fatalf("clause %d does not cover field %q: %v", i, field, clause)
		}
		if !window["$gte"].(time.Time).Equal(start) || !window["$lt"].(time.Time).Equal(end) {
			t.Errorf("field %q window = %v, want [%v, %v)", field, window, start, end)
		}
	}
}
