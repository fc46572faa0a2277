package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/maheshrc27/postpilot/internal/transfer"
	"golang.org/x/oauth2"
)

const LINKEDIN_POST_URL = "https://api.linkedin.com/v2/ugcPosts"

type linkedinPublisher struct{}

func NewLinkedInPublisher() Publisher {
	return &linkedinPublisher{}
}

func (p *linkedinPublisher) Publish(ctx context.Context, args transfer.PublishArgs) (*transfer.PublishResult, error) {
	body := map[string]any{
		"author":         fmt.Sprintf("urn:li:person:%s", args.PlatformUserID),
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary": map[string]string{
					"text": args.Content,
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, LINKEDIN_POST_URL, bytes.NewReader(payload))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: args.AccessToken}))
	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to post to LinkedIn: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &transfer.PublishResult{
			Success: false,
			Error:   fmt.Sprintf("error response from LinkedIn: %s (status code: %d)", respBody, resp.StatusCode),
		}, nil
	}

	var result struct {
		ID string `json:"id"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode LinkedIn response: %v", err)
	}

	return &transfer.PublishResult{Success: true, PostID: result.ID}, nil
}
