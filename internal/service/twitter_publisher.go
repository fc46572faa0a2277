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
)

const TWITTER_POST_URL = "https://api.twitter.com/2/tweets"

type twitterPublisher struct{}

func NewTwitterPublisher() Publisher {
	return &twitterPublisher{}
}

func (p *twitterPublisher) Publish(ctx context.Context, args transfer.PublishArgs) (*transfer.PublishResult, error) {
	payload, err := json.Marshal(map[string]string{"text": args.Content})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, TWITTER_POST_URL, bytes.NewReader(payload))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+args.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to post tweet: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &transfer.PublishResult{
			Success: false,
			Error:   fmt.Sprintf("error response from Twitter: %s (status code: %d)", body, resp.StatusCode),
		}, nil
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode tweet response: %v", err)
	}

	return &transfer.PublishResult{Success: true, PostID: result.Data.ID}, nil
}
