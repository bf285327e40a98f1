package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/gaushala-net/gaushala/client"
	"github.com/gaushala-net/gaushala/internal/domain"
)

// MediaGateway uploads files with an unsigned upload preset.
type MediaGateway struct {
	client       *client.Client
	endpoint     string
	cloudName    string
	uploadPreset string
}

func NewMediaGateway(client *client.Client, endpoint, cloudName, uploadPreset string) *MediaGateway {
	return &MediaGateway{
		client:       client,
		endpoint:     strings.TrimRight(endpoint, "/"),
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

func resourceType(kind domain.MediaKind) string {
	switch kind {
	case domain.MediaVideo:
		return "video"
	case domain.MediaDocument:
		return "raw"
	default:
		return "image"
	}
}

func (g *MediaGateway) Upload(ctx context.Context, file domain.MediaPayload) (string, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Media.Upload")
	defer span.End()

	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/upload", g.endpoint, g.cloudName, resourceType(file.Kind))

	filename := file.Filename
	if filename == "" {
		filename = "upload"
	}

	var resp uploadResponse
	err := g.client.PostMultipart(ctx, endpoint, map[string]string{
		"upload_preset": g.uploadPreset,
	}, client.File{
		Field:       "file",
		Filename:    filename,
		ContentType: file.ContentType,
		Data:        file.Data,
	}, &resp)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("upload response has no url")
	}
	return resp.SecureURL, nil
}
