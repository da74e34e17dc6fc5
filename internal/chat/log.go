package chat

import (
	"strings"
	"time"

	"github.com/2beens/fitassist/internal/apperr"
)

type Topic string

const (
	TopicFitness   Topic = "fitness"
	TopicNutrition Topic = "nutrition"
)

func ParseTopic(s string) (Topic, error) {
	switch topic := Topic(strings.ToLower(strings.TrimSpace(s))); topic {
	case TopicFitness, TopicNutrition:
		return topic, nil
	default:
		return "", apperr.InvalidInput("unknown chat topic: %q", s)
	}
}

// Log is a single question/answer turn with the assistant.
type Log struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Topic       Topic     `json:"topic"`
	UserMessage string    `json:"userMessage"`
	BotReply    string    `json:"botReply"`
	Timestamp   time.Time `json:"timestamp"`
}

func (l *Log) Validate() error {
	if l.UserID <= 0 {
		return apperr.InvalidInput("invalid user id: %d", l.UserID)
	}
	if _, err := ParseTopic(string(l.Topic)); err != nil {
		return err
	}
	if strings.TrimSpace(l.UserMessage) == "" {
		return apperr.InvalidInput("user message empty")
	}
	return nil
}
