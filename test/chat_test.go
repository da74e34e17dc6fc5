package test

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fitassist/internal/chat"
	"github.com/2beens/fitassist/internal/tips"
)

func (s *IntegrationTestSuite) TestChat() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	token, user := registerAndLogin(ctx, t, s.httpClient, 175, 80)

	status, body := doRequest(ctx, t, s.httpClient, "POST", "/chat/fitness", token, chat.AskRequest{
		Message: "I want to lose 5 kg before summer",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var reply chat.Reply
	require.NoError(t, json.Unmarshal(body, &reply))
	assert.False(t, reply.Fallback)
	assert.Equal(t, assistantAnswer, reply.BotReply)
	assert.Equal(t, user.ID, reply.UserID)
	require.Len(t, reply.Suggestions, 1)
	assert.Equal(t, "weight_lose", reply.Suggestions[0].GoalType)
	assert.Equal(t, 5.0, reply.Suggestions[0].TargetValue)

	status, _ = doRequest(ctx, t, s.httpClient, "POST", "/chat/astrology", token, chat.AskRequest{Message: "hi"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doRequest(ctx, t, s.httpClient, "GET", "/chat/analytics", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var analytics chat.Analytics
	require.NoError(t, json.Unmarshal(body, &analytics))
	assert.Equal(t, 1, analytics.TotalChats)
	require.Len(t, analytics.Recent, 1)
	assert.Equal(t, "I want to lose 5 kg before summer", analytics.Recent[0].UserMessage)
}

func (s *IntegrationTestSuite) TestPublicEndpoints() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	status, body := doRequest(ctx, t, s.httpClient, "GET", "/tips/random", "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var tip tips.Tip
	require.NoError(t, json.Unmarshal(body, &tip))
	assert.NotEmpty(t, tip.Text)

	status, body = doRequest(ctx, t, s.httpClient, "GET", "/version", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "test-version-info", string(body))

	status, _ = doRequest(ctx, t, s.httpClient, "GET", "/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
