package service

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrNoTopicsConfigured is returned when a user has no topics to pick from.
var ErrNoTopicsConfigured = errors.New("no topics configured")

// recentTopicWindow is how many recently used topics are excluded from
// selection before the rotation resets.
const recentTopicWindow = 5

// SelectTopic picks the next topic, avoiding the recently used ones. When
// every topic has been used recently the rotation resets and any topic may be
// picked again. The reason string explains the choice for the pipeline log.
func SelectTopic(topics, recentTopics []string) (string, string, error) {
	if len(topics) == 0 {
		return "", "", ErrNoTopicsConfigured
	}

	if len(topics) == 1 {
		return topics[0], "only one topic configured", nil
	}

	recent := make(map[string]struct{}, recentTopicWindow)
	for i, t := range recentTopics {
		if i == recentTopicWindow {
			break
		}
		recent[t] = struct{}{}
	}

	var fresh []string
	for _, t := range topics {
		if _, used := recent[t]; !used {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) > 0 {
		topic := fresh[rand.Intn(len(fresh))]
		reason := fmt.Sprintf("picked from %d topics not used in the last %d posts", len(fresh), len(recentTopics))
		return topic, reason, nil
	}

	topic := topics[rand.Intn(len(topics))]
	return topic, "all topics recently used, rotation reset", nil
}
