package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/gaushala-net/gaushala/client"
	"github.com/gaushala-net/gaushala/internal/domain"
)

var tracer = otel.Tracer("gateway")

// ClassifierGateway calls a generateContent style model endpoint.
type ClassifierGateway struct {
	client   *client.Client
	endpoint string
	model    string
	apiKey   string
}

func NewClassifierGateway(client *client.Client, endpoint, model, apiKey string) *ClassifierGateway {
	return &ClassifierGateway{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		apiKey:   apiKey,
	}
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and the optional media in a single request and
// returns the concatenated text of the first candidate.
func (g *ClassifierGateway) Generate(ctx context.Context, prompt string, media *domain.EncodedMedia) (string, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Classifier.Generate")
	defer span.End()

	parts := []part{{Text: prompt}}
	if media != nil {
		parts = append(parts, part{InlineData: &inlineData{MimeType: media.MimeType, Data: media.Base64}})
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.endpoint, g.model, url.QueryEscape(g.apiKey))

	var resp generateResponse
	err := g.client.PostJSON(ctx, endpoint, nil, generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
	}, &resp)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("classifier returned no candidates")
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("classifier returned an empty answer")
	}
	return b.String(), nil
}
