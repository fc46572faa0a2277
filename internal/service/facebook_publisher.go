package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/maheshrc27/postpilot/internal/transfer"
)

const FACEBOOK_GRAPH_URL = "https://graph.facebook.com/v19.0"

type facebookPublisher struct{}

func NewFacebookPublisher() Publisher {
	return &facebookPublisher{}
}

func (p *facebookPublisher) Publish(ctx context.Context, args transfer.PublishArgs) (*transfer.PublishResult, error) {
	data := url.Values{}
	data.Set("message", args.Content)
	data.Set("access_token", args.AccessToken)
	if args.ImageURL != "" {
		data.Set("link", args.ImageURL)
	}

	endpoint := fmt.Sprintf("%s/%s/feed", FACEBOOK_GRAPH_URL, args.PlatformUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to post to Facebook: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &transfer.PublishResult{
			Success: false,
			Error:   fmt.Sprintf("error response from Facebook: %s (status code: %d)", body, resp.StatusCode),
		}, nil
	}

	var result struct {
		ID string `json:"id"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode Facebook response: %v", err)
	}

	return &transfer.PublishResult{Success: true, PostID: result.ID}, nil
}
