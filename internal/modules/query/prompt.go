package query

import (
	"fmt"
	"sort"
	"strings"
)

const answerInstruction = "Assistant: Provide a well-formed paragraph response that is clear and conversational."

// BuildContextBlock renders the retrieved records as the text context
// supplied to the model: per collection a header, then either its note or a
// bulleted field/value rendering of every record. Fields are sorted so the
// block is deterministic.
func BuildContextBlock(results []CollectionResult) string {
	var b strings.Builder
	for _, result := range results {
		fmt.Fprintf(&b, "\n**%s**:\n", result.Collection)
		if result.Note != "" {
			b.WriteString(result.Note)
			b.WriteString("\n")
			continue
		}
		for _, record := range result.Records {
			keys := make([]string, 0, len(record))
			for key := range record {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintf(&b, "- **%s**: %v\n", key, record[key])
			}
		}
	}
	return b.String()
}

// BuildAnswerPrompt assembles the full completion prompt from the user's
// query and the rendered context block.
func BuildAnswerPrompt(userQuery, contextBlock string) string {
	return fmt.Sprintf(
		"User Query: %s\n\nContext from the database:\n%s\n\n%s",
		userQuery, contextBlock, answerInstruction,
	)
}

// buildCorrectionPrompt asks the model to fix grammar without changing
// meaning; the reply is used verbatim as the corrected query.
func buildCorrectionPrompt(raw string) string {
	return "Correct the grammar and spelling of the following question while preserving its meaning exactly. " +
		"Reply with the corrected question only, no commentary.\n\n" + raw
}
