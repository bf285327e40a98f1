package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/gaushala-net/gaushala/internal/domain"
)

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		want   domain.Verdict
	}{
		{"accepted", `{"relevant": true, "needsReview": false}`, domain.Accepted(false)},
		{"accepted needing review", `{"relevant": true, "needsReview": true}`, domain.Accepted(true)},
		{"rejected", `{"relevant": false, "needsReview": true}`, domain.Rejected()},
		{"fenced", "```json\n{\"relevant\": true, \"needsReview\": true}\n```", domain.Accepted(true)},
		{"prose around object", `Sure. {"relevant": true} Hope this helps`, domain.Accepted(false)},
		{"legacy keys", `{"valid": "true", "verify": "true"}`, domain.Accepted(true)},
		{"string false", `{"valid": "false", "verify": "true"}`, domain.Rejected()},
		{"missing relevance", `{"needsReview": true}`, domain.Unavailable()},
		{"not json", `I cannot help with that`, domain.Unavailable()},
		{"broken json", `{"relevant": tru`, domain.Unavailable()},
		{"empty", ``, domain.Unavailable()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseVerdict(tc.answer)
			if got != tc.want {
				t.Fatalf("expected %+v got %+v", tc.want, got)
			}
		})
	}
}

func TestContentGateMakesOneCall(t *testing.T) {
	classifier := &mockClassifier{err: errBoom}
	gate := NewContentGate(classifier)

	v := gate.Evaluate(context.Background(), "my cow has a fever", nil)
	if v.Kind != domain.VerdictUnavailable {
		t.Fatalf("expected unavailable got %s", v.Kind)
	}
	if classifier.calls != 1 {
		t.Fatalf("expected exactly one request got %d", classifier.calls)
	}
}

func TestContentGatePassesTextAndMedia(t *testing.T) {
	classifier := &mockClassifier{answers: []string{`{"relevant": true, "needsReview": false}`}}
	gate := NewContentGate(classifier)
	media := &domain.EncodedMedia{MimeType: "image/png", Base64: "AAAA"}

	v := gate.Evaluate(context.Background(), "gir cow milk yield", media)
	if v != domain.Accepted(false) {
		t.Fatalf("expected accepted got %+v", v)
	}
	if !strings.HasSuffix(classifier.prompts[0], "gir cow milk yield") {
		t.Fatalf("expected prompt to end with the submission text")
	}
	if classifier.media[0] != media {
		t.Fatalf("expected media to be forwarded")
	}
}

func TestCategorizerParsesTags(t *testing.T) {
	classifier := &mockClassifier{answers: []string{"```json\n[\"Health\", \" dairy \", 3, \"\"]\n```"}}
	c := NewCategorizer(classifier)

	tags := c.Categorize(context.Background(), "fever after calving", nil)
	if len(tags) != 2 || tags[0] != "health" || tags[1] != "dairy" {
		t.Fatalf("unexpected tags %v", tags)
	}
	if !strings.Contains(classifier.prompts[0], "vaccination") {
		t.Fatalf("expected topic list in prompt")
	}
}

func TestCategorizerFailureYieldsEmpty(t *testing.T) {
	for _, c := range []*Categorizer{
		NewCategorizer(&mockClassifier{err: errBoom}),
		NewCategorizer(&mockClassifier{answers: []string{"no idea"}}),
	} {
		tags := c.Categorize(context.Background(), "text", nil)
		if tags == nil || len(tags) != 0 {
			t.Fatalf("expected empty non-nil tags got %#v", tags)
		}
	}
}
