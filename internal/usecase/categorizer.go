package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/gaushala-net/gaushala/internal/domain"
)

// Topics offered to the classifier. Answers outside this list are kept as-is.
var Topics = []string{
	"health", "disease", "vaccination", "nutrition", "grazing", "breeding",
	"dairy", "calving", "shelter", "conservation", "organic farming", "government schemes",
}

const categorizePrompt = `Pick the topics that describe the following post about Indian cows.
Choose from: %TOPICS%.
Answer with a JSON array of strings and nothing else. Answer [] when unsure.

Post:
`

// Categorizer derives filter tags for gate-accepted content.
type Categorizer struct {
	classifier Classifier
	prompt     string
}

func NewCategorizer(classifier Classifier) *Categorizer {
	return &Categorizer{
		classifier: classifier,
		prompt:     strings.Replace(categorizePrompt, "%TOPICS%", strings.Join(Topics, ", "), 1),
	}
}

// Categorize never fails the submission: an inconclusive answer is an empty list.
func (c *Categorizer) Categorize(ctx context.Context, text string, image *domain.EncodedMedia) []string {
	ctx, span := tracer.Start(ctx, "Usecase.Categorizer.Categorize")
	defer span.End()

	answer, err := c.classifier.Generate(ctx, c.prompt+text, image)
	if err != nil {
		span.RecordError(err)
		slog.InfoContext(
			ctx, "categorization skipped",
			slog.String("error", err.Error()),
			slog.String("module", "categorizer"),
		)
		return []string{}
	}

	return parseTags(answer)
}

func parseTags(answer string) []string {
	arr, ok := extractJSON(answer, '[', ']')
	if !ok {
		return []string{}
	}

	var raw []any
	if err := json.Unmarshal([]byte(arr), &raw); err != nil {
		return []string{}
	}

	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}
