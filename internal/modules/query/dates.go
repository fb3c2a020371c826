package query

import (
	"regexp"
	"strings"
	"time"

	dateparser "github.com/markusmobius/go-dateparser"
	"go.mongodb.org/mongo-driver/bson"
)

// Documents carry their event time under different field names depending on
// which upstream process wrote them; a date filter matches any of these.
var timestampFields = []string{
	"updatedAt",
	"startTimestamp",
	"breakdownStartDateTime",
	"CreatedAt",
}

// Ordered date-shaped patterns: day month-name (ordinal suffix allowed),
// month-name day, numeric dd-mm-yyyy.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\b`),
	regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s\d{1,2}\b`),
	regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{4}\b`),
}

// ExtractDate scans free text for a calendar date. Temporal keywords win
// over date-shaped substrings, in priority order; after that only the first
// matching pattern is tried, and its parse failure means no date.
func ExtractDate(text string, now time.Time) (time.Time, bool) {
	today := startOfDay(now.UTC())
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "today"):
		return today, true
	case strings.Contains(lower, "yesterday"):
		return today.AddDate(0, 0, -1), true
	case strings.Contains(lower, "this month"):
		return today.AddDate(0, 0, 1-today.Day()), true
	}

	for _, pattern := range datePatterns {
		match := pattern.FindString(text)
		if match == "" {
			continue
		}
		parsed, err := dateparser.Parse(nil, match)
		if err != nil {
			return time.Time{}, false
		}
		return startOfDay(parsed.Time.UTC()), true
	}

	return time.Time{}, false
}

// DateFilter selects documents whose timestamp falls within the 24-hour
// window starting at the given day's midnight, across all known
// timestamp-bearing fields.
func DateFilter(day time.Time) bson.M {
	start := startOfDay(day.UTC())
	end := start.AddDate(0, 0, 1)

	clauses := make(bson.A, 0, len(timestampFields))
	for _, field := range timestampFields {
		clauses = append(clauses, bson.M{field: bson.M{"$gte": start, "$lt": end}})
	}
	return bson.M{"$or": clauses}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
