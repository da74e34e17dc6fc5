package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fitassist/internal/auth"
	"github.com/2beens/fitassist/internal/users"
)

const testPassword = "testpass-1234"

// doRequest sends a JSON request (body may be nil) with the session token when set,
// and returns the status code and the raw response body.
func doRequest(
	ctx context.Context,
	t *testing.T,
	client *http.Client,
	method, path, token string,
	body any,
) (int, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBytes
}

// registerAndLogin creates a new user with the given body metrics and returns its session token.
func registerAndLogin(ctx context.Context, t *testing.T, client *http.Client, heightCm, weightKg float64) (string, *users.User) {
	t.Helper()

	email := fmt.Sprintf("%d.%s", gofakeit.Number(1000, 999999), gofakeit.Email())
	status, body := doRequest(ctx, t, client, "POST", "/a/register", "", users.RegisterRequest{
		Profile: users.Profile{
			Name:     gofakeit.FirstName(),
			Age:      gofakeit.Number(18, 70),
			Gender:   "female",
			HeightCm: heightCm,
			WeightKg: weightKg,
		},
		Email:    email,
		Password: testPassword,
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = doRequest(ctx, t, client, "POST", "/a/login", "", users.LoginRequest{
		Email:    email,
		Password: testPassword,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var loginResp users.LoginResponse
	require.NoError(t, json.Unmarshal(body, &loginResp))
	require.NotEmpty(t, loginResp.Token)
	return loginResp.Token, loginResp.User
}
