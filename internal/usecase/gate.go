package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gaushala-net/gaushala/internal/domain"
)

const gatePrompt = `You review submissions for a community platform about indigenous Indian cow breeds,
their health, care, breeding, dairy and conservation.
Decide whether the text (and the attached media, if any) is relevant to that topic and
whether its claims should be checked by a veterinary doctor or a research institution
before the community relies on it.
Answer with a single JSON object and nothing else:
{"relevant": true|false, "needsReview": true|false}

Submission:
`

// ContentGate decides whether a submission may enter the platform.
type ContentGate struct {
	classifier Classifier
}

func NewContentGate(classifier Classifier) *ContentGate {
	return &ContentGate{classifier: classifier}
}

// Evaluate issues exactly one classification request. Any transport or parse
// failure yields an Unavailable verdict; nothing is retried.
func (g *ContentGate) Evaluate(ctx context.Context, text string, media *domain.EncodedMedia) domain.Verdict {
	ctx, span := tracer.Start(ctx, "Usecase.ContentGate.Evaluate")
	defer span.End()

	answer, err := g.classifier.Generate(ctx, gatePrompt+text, media)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(
			ctx, "classification request failed",
			slog.String("error", err.Error()),
			slog.String("module", "gate"),
		)
		gateVerdicts.WithLabelValues(domain.VerdictUnavailable.String()).Inc()
		return domain.Unavailable()
	}

	verdict := parseVerdict(answer)
	span.SetAttributes(
		attribute.String("verdict", verdict.Kind.String()),
		attribute.Bool("needsReview", verdict.NeedsReview),
	)
	gateVerdicts.WithLabelValues(verdict.Kind.String()).Inc()
	return verdict
}

// flexBool accepts both JSON booleans and the strings "true"/"false".
type flexBool struct {
	set   bool
	value bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		b.set, b.value = true, t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true":
			b.set, b.value = true, true
		case "false":
			b.set, b.value = true, false
		}
	}
	return nil
}

type gateAnswer struct {
	Relevant    flexBool `json:"relevant"`
	Valid       flexBool `json:"valid"`
	NeedsReview flexBool `json:"needsReview"`
	Verify      flexBool `json:"verify"`
}

func parseVerdict(answer string) domain.Verdict {
	obj, ok := extractJSON(answer, '{', '}')
	if !ok {
		return domain.Unavailable()
	}

	var a gateAnswer
	if err := json.Unmarshal([]byte(obj), &a); err != nil {
		return domain.Unavailable()
	}

	relevant := a.Relevant
	if !relevant.set {
		relevant = a.Valid
	}
	if !relevant.set {
		return domain.Unavailable()
	}
	if !relevant.value {
		return domain.Rejected()
	}

	review := a.NeedsReview
	if !review.set {
		review = a.Verify
	}
	return domain.Accepted(review.value)
}

// extractJSON strips markdown fences and returns the outermost value
// delimited by open and close.
func extractJSON(answer string, open, close byte) (string, bool) {
	s := strings.ReplaceAll(answer, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
