package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fitassist/internal/dashboard"
	"github.com/2beens/fitassist/internal/goals"
	"github.com/2beens/fitassist/internal/report"
	"github.com/2beens/fitassist/internal/users"
	"github.com/2beens/fitassist/internal/workouts"
)

// TestFitnessFlow logs a workout and a goal for a 180 cm / 90 kg user and
// checks what the dashboard and the report make of it.
func (s *IntegrationTestSuite) TestFitnessFlow() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	token, user := registerAndLogin(ctx, t, s.httpClient, 180, 90)
	today := time.Now().UTC()

	status, _ := doRequest(ctx, t, s.httpClient, "GET", "/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := doRequest(ctx, t, s.httpClient, "POST", "/workouts", token, workouts.AddWorkoutRequest{
		Date:           today.Format(time.DateOnly),
		Exercise:       "Running",
		DurationMin:    45,
		CaloriesBurned: 400,
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = doRequest(ctx, t, s.httpClient, "POST", "/goals", token, goals.CreateGoalRequest{
		GoalType:    "Weight Loss",
		TargetValue: 10,
		StartDate:   today.Format(time.DateOnly),
		EndDate:     today.AddDate(0, 3, 0).Format(time.DateOnly),
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var goal goals.GoalView
	require.NoError(t, json.Unmarshal(body, &goal))
	assert.Equal(t, "weight_loss", goal.GoalType)
	assert.Equal(t, goals.StatusActive, goal.Status)

	status, body = doRequest(ctx, t, s.httpClient, "PUT", fmt.Sprintf("/goals/%d/progress", goal.ID), token,
		goals.UpdateProgressRequest{CurrentValue: 3},
	)
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &goal))
	assert.Equal(t, "3.0/10.0", goal.ProgressText)
	assert.InDelta(t, 0.3, goal.Progress, 1e-9)

	status, body = doRequest(ctx, t, s.httpClient, "GET", "/bmi", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var bmiResp users.BMIResponse
	require.NoError(t, json.Unmarshal(body, &bmiResp))
	assert.Equal(t, 27.78, bmiResp.BMI)
	assert.Equal(t, "Overweight", bmiResp.Category.Name)

	status, body = doRequest(ctx, t, s.httpClient, "GET", "/report/model", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var model report.Model
	require.NoError(t, json.Unmarshal(body, &model))
	assert.Equal(t, user.Name, model.UserName)
	assert.Contains(t, model.Profile, report.Field{Label: "BMI", Value: "27.78 (Overweight)"})
	require.Len(t, model.Goals, 1)
	assert.Equal(t, "3.0/10.0", model.Goals[0].Progress)
	assert.Equal(t, "Weight Loss", model.Goals[0].Title)
	require.Len(t, model.Workouts, 1)
	assert.Equal(t, 45, model.Workouts[0].DurationMin)
	assert.Equal(t, "400", model.Workouts[0].Calories)

	status, body = doRequest(ctx, t, s.httpClient, "GET", "/dashboard?days=7", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var summary dashboard.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 1, summary.TotalWorkouts)
	assert.Equal(t, 400.0, summary.CaloriesBurned)
	assert.Equal(t, 1, summary.ActiveGoals)
	assert.Equal(t, 1, summary.TotalGoals)
	require.NotNil(t, summary.BMI)
	assert.Equal(t, 27.78, *summary.BMI)

	status, body = doRequest(ctx, t, s.httpClient, "POST", "/report", token, nil)
	require.Equal(t, http.StatusCreated, status, string(body))
	var generated report.Generated
	require.NoError(t, json.Unmarshal(body, &generated))
	assert.Equal(t, filepath.Join(s.reportsDir, generated.Name), generated.Location)
	stored, err := os.ReadFile(generated.Location)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(stored[:5]))

	var goalsCount int
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT count(*) FROM goals WHERE user_id = $1`, user.ID).Scan(&goalsCount))
	assert.Equal(t, 1, goalsCount)
}

func (s *IntegrationTestSuite) TestGoals_OtherUsersGoalNotFound() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ownerToken, _ := registerAndLogin(ctx, t, s.httpClient, 170, 65)
	otherToken, _ := registerAndLogin(ctx, t, s.httpClient, 160, 55)
	today := time.Now().UTC()

	status, body := doRequest(ctx, t, s.httpClient, "POST", "/goals", ownerToken, goals.CreateGoalRequest{
		GoalType:    "run_5k",
		TargetValue: 5,
		StartDate:   today.Format(time.DateOnly),
		EndDate:     today.Format(time.DateOnly),
	})
	require.Equal(t, http.StatusBadRequest, status, "same-day range must be rejected")

	status, body = doRequest(ctx, t, s.httpClient, "POST", "/goals", ownerToken, goals.CreateGoalRequest{
		GoalType:    "run_5k",
		TargetValue: 5,
		StartDate:   today.Format(time.DateOnly),
		EndDate:     today.AddDate(0, 1, 0).Format(time.DateOnly),
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var goal goals.GoalView
	require.NoError(t, json.Unmarshal(body, &goal))

	status, _ = doRequest(ctx, t, s.httpClient, "PUT", fmt.Sprintf("/goals/%d/status", goal.ID), otherToken,
		goals.UpdateStatusRequest{Status: "completed"},
	)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doRequest(ctx, t, s.httpClient, "PUT", fmt.Sprintf("/goals/%d/status", goal.ID), ownerToken,
		goals.UpdateStatusRequest{Status: "completed"},
	)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = doRequest(ctx, t, s.httpClient, "GET", "/goals?filter=active", ownerToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var active []goals.GoalView
	require.NoError(t, json.Unmarshal(body, &active))
	assert.Empty(t, active)
}

func (s *IntegrationTestSuite) TestGoals_ProgressKeepsPrecision() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	token, _ := registerAndLogin(ctx, t, s.httpClient, 172.5, 68.3)
	today := time.Now().UTC()

	status, body := doRequest(ctx, t, s.httpClient, "POST", "/goals", token, goals.CreateGoalRequest{
		GoalType:    "weight_loss",
		TargetValue: 7.7,
		StartDate:   today.Format(time.DateOnly),
		EndDate:     today.AddDate(0, 2, 0).Format(time.DateOnly),
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var goal goals.GoalView
	require.NoError(t, json.Unmarshal(body, &goal))

	status, body = doRequest(ctx, t, s.httpClient, "PUT", fmt.Sprintf("/goals/%d/progress", goal.ID), token,
		goals.UpdateProgressRequest{CurrentValue: 3.3},
	)
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &goal))
	assert.Equal(t, 3.3, goal.CurrentValue)
	assert.Equal(t, 7.7, goal.TargetValue)

	var stored float64
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT current_value FROM goals WHERE id = $1`, goal.ID).Scan(&stored))
	assert.Equal(t, 3.3, stored)

	status, body = doRequest(ctx, t, s.httpClient, "GET", "/report/model", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var model report.Model
	require.NoError(t, json.Unmarshal(body, &model))
	assert.Contains(t, model.Profile, report.Field{Label: "Weight", Value: "68.3 kg"})
	assert.Contains(t, model.Profile, report.Field{Label: "Height", Value: "172.5 cm"})
}

func (s *IntegrationTestSuite) TestWorkouts_DeletedUserNotFound() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	token, user := registerAndLogin(ctx, t, s.httpClient, 175, 70)
	// the session outlives the row
	_, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, user.ID)
	require.NoError(t, err)

	status, body := doRequest(ctx, t, s.httpClient, "POST", "/workouts", token, workouts.AddWorkoutRequest{
		Date:        time.Now().UTC().Format(time.DateOnly),
		Exercise:    "Rowing",
		DurationMin: 20,
	})
	assert.Equal(t, http.StatusNotFound, status, string(body))
}
