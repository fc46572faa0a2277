package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/h2non/filetype"
	config "github.com/maheshrc27/postpilot/configs"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const OPENAI_IMAGE_URL = "https://api.openai.com/v1/images/generations"

// ImageService generates an illustration for a post and stores it in R2,
// returning the public URL.
type ImageService interface {
	GenerateImage(ctx context.Context, topic string) (string, error)
}

type imageService struct {
	cfg config.Config
	r2  *R2Service
}

func NewImageService(cfg config.Config, r2 *R2Service) ImageService {
	return &imageService{cfg: cfg, r2: r2}
}

func (s *imageService) GenerateImage(ctx context.Context, topic string) (string, error) {
	if s.cfg.OpenAIKey == "" {
		err := errors.New("no image generation provider configured")
		slog.Info(err.Error())
		return "", err
	}

	reqBody := map[string]any{
		"model":           s.cfg.OpenAIImageModel,
		"prompt":          fmt.Sprintf("A clean illustration for a social media post about %s", topic),
		"size":            "1024x1024",
		"response_format": "b64_json",
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, OPENAI_IMAGE_URL, bytes.NewReader(payload))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.OpenAIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("image generation request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("error response from image provider: %s (status code: %d)", body, resp.StatusCode)
	}

	var result struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to decode image response: %v", err)
	}

	if len(result.Data) == 0 {
		return "", errors.New("image generation returned no data")
	}

	imageBytes, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	kind, err := filetype.Match(imageBytes)
	if err != nil || !filetype.IsImage(imageBytes) {
		return "", errors.New("generated file is not a valid image")
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	if err := s.r2.UploadToR2(ctx, key, imageBytes, kind.MIME.Value); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", s.cfg.R2.PublicURL, key), nil
}
