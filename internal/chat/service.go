package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/bodymetrics"
	"github.com/2beens/fitassist/internal/goals"
	"github.com/2beens/fitassist/internal/telemetry/metrics"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/internal/users"
	"github.com/2beens/fitassist/internal/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=chat_test

const (
	FallbackReply = "Sorry, I couldn't process your request at the moment. Please try again later."

	recentWorkoutsDays  = 3
	recentWorkoutsLimit = 3
	analyticsRecentSize = 5

	outcomeOK       = "ok"
	outcomeFallback = "fallback"
)

// Assistant is the AI chat collaborator.
type Assistant interface {
	Reply(ctx context.Context, instruction, message string) (string, error)
}

type TextExtractor interface {
	Extract(data []byte, mimeType string) string
}

type usersRepo interface {
	Get(ctx context.Context, id int) (*users.User, error)
}

type goalsRepo interface {
	List(ctx context.Context, userID int, filter goals.Filter) ([]goals.Goal, error)
}

type workoutsRepo interface {
	ListSince(ctx context.Context, userID int, since time.Time) ([]workouts.Workout, error)
}

type logsRepo interface {
	Add(ctx context.Context, chatLog Log) (*Log, error)
	ListRecent(ctx context.Context, userID, limit int) ([]Log, error)
	Count(ctx context.Context, userID int) (int, error)
}

type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

type Reply struct {
	Log
	Fallback    bool             `json:"fallback"`
	Suggestions []GoalSuggestion `json:"suggestions"`
}

type Analytics struct {
	TotalChats int   `json:"totalChats"`
	Recent     []Log `json:"recent"`
}

type NewServiceParams struct {
	UsersRepo       usersRepo
	GoalsRepo       goalsRepo
	WorkoutsRepo    workoutsRepo
	LogsRepo        logsRepo
	Assistant       Assistant
	Extractor       TextExtractor
	ContextCache    *freecache.Cache
	ContextCacheTTL time.Duration
	MetricsManager  *metrics.Manager
}

type Service struct {
	users           usersRepo
	goals           goalsRepo
	workouts        workoutsRepo
	logs            logsRepo
	assistant       Assistant
	extractor       TextExtractor
	contextCache    *freecache.Cache
	contextCacheTTL time.Duration
	metricsManager  *metrics.Manager

	nowFunc func() time.Time
}

func NewService(params NewServiceParams) *Service {
	extractor := params.Extractor
	if extractor == nil {
		extractor = DocTextExtractor{}
	}
	return &Service{
		users:           params.UsersRepo,
		goals:           params.GoalsRepo,
		workouts:        params.WorkoutsRepo,
		logs:            params.LogsRepo,
		assistant:       params.Assistant,
		extractor:       extractor,
		contextCache:    params.ContextCache,
		contextCacheTTL: params.ContextCacheTTL,
		metricsManager:  params.MetricsManager,
		nowFunc:         time.Now,
	}
}

// Ask sends the message to the assistant and stores the turn. When the assistant
// fails the fallback reply is stored and returned instead, so only input and store
// problems surface as errors.
func (s *Service) Ask(
	ctx context.Context,
	userID int,
	topic Topic,
	message string,
	attachment *Attachment,
) (_ *Reply, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.chat.ask")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("topic", string(topic)))

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.InvalidInput("message empty")
	}
	if _, err := ParseTopic(string(topic)); err != nil {
		return nil, err
	}

	var attachmentText string
	if attachment != nil && topic == TopicNutrition {
		if !IsSupportedMimeType(attachment.MimeType) {
			return nil, apperr.InvalidInput("unsupported file type %q, upload a PDF or a text file", attachment.MimeType)
		}
		attachmentText = s.extractor.Extract(attachment.Data, attachment.MimeType)
	}

	userContext, err := s.UserContext(ctx, userID, topic)
	if err != nil {
		return nil, err
	}

	fallback := false
	start := time.Now()
	reply, err := s.assistant.Reply(ctx, instructionFor(topic), buildPrompt(topic, userContext, attachmentText, message))
	s.metricsManager.HistAssistantDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Errorf("chat [%s] assistant reply for user %d: %s", topic, userID, err)
		reply = FallbackReply
		fallback = true
	}

	saved, err := s.logs.Add(ctx, Log{
		UserID:      userID,
		Topic:       topic,
		UserMessage: message,
		BotReply:    reply,
	})
	if err != nil {
		return nil, err
	}

	outcome := outcomeOK
	if fallback {
		outcome = outcomeFallback
	}
	s.metricsManager.CounterChatTurns.WithLabelValues(string(topic), outcome).Inc()

	return &Reply{
		Log:         *saved,
		Fallback:    fallback,
		Suggestions: SuggestGoals(message),
	}, nil
}

// UserContext describes the user to the assistant: profile, BMI, unfinished goals
// and, for fitness questions, the latest workouts.
func (s *Service) UserContext(ctx context.Context, userID int, topic Topic) (string, error) {
	cacheKey := contextCacheKey(topic, userID)
	if s.contextCache != nil {
		if cached, err := s.contextCache.Get(cacheKey); err == nil {
			log.Tracef("chat context for user %d found in cache", userID)
			return string(cached), nil
		}
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	userGoals, err := s.goals.List(ctx, userID, goals.FilterAll)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("User Profile:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", user.Name)
	fmt.Fprintf(&sb, "- Age: %d\n", user.Age)
	fmt.Fprintf(&sb, "- Gender: %s\n", user.Gender)
	fmt.Fprintf(&sb, "- Height: %.1f cm\n", user.HeightCm)
	fmt.Fprintf(&sb, "- Weight: %.1f kg\n", user.WeightKg)
	if bmi, err := bodymetrics.ComputeBMI(user.WeightKg, user.HeightCm); err == nil && user.HasBodyMetrics() {
		fmt.Fprintf(&sb, "- BMI: %.2f (%s)\n", bmi, bodymetrics.ClassifyBMI(bmi).Name)
	} else {
		sb.WriteString("- BMI: N/A\n")
	}

	sb.WriteString("\nActive Goals:\n")
	activeGoals := 0
	for _, g := range userGoals {
		if g.Status == goals.StatusCompleted {
			continue
		}
		activeGoals++
		fmt.Fprintf(&sb, "- Type: %s, Target: %.1f, Current: %.1f, Status: %s\n",
			g.GoalType, g.TargetValue, g.CurrentValue, g.Status)
	}
	if activeGoals == 0 {
		sb.WriteString("No active goals.\n")
	}

	if topic == TopicFitness {
		since := s.nowFunc().AddDate(0, 0, -recentWorkoutsDays)
		recent, err := s.workouts.ListSince(ctx, userID, since)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&sb, "\nRecent Workouts (last %d days):\n", recentWorkoutsDays)
		if len(recent) == 0 {
			sb.WriteString("No recent workouts logged.\n")
		}
		// oldest first from the store, newest first here
		for i, listed := len(recent)-1, 0; i >= 0 && listed < recentWorkoutsLimit; i, listed = i-1, listed+1 {
			w := recent[i]
			fmt.Fprintf(&sb, "- Date: %s, Exercise: %s, Duration: %d min, Calories: %.0f\n",
				w.Date.Format(time.DateOnly), w.Exercise, w.DurationMin, w.CaloriesBurned)
		}
	}

	userContext := sb.String()
	if s.contextCache != nil && s.contextCacheTTL > 0 {
		if err := s.contextCache.Set(cacheKey, []byte(userContext), int(s.contextCacheTTL.Seconds())); err != nil {
			log.Errorf("set chat context cache for user %d: %s", userID, err)
		}
	}

	return userContext, nil
}

func (s *Service) Analytics(ctx context.Context, userID int) (_ *Analytics, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.chat.analytics")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	total, err := s.logs.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.logs.ListRecent(ctx, userID, analyticsRecentSize)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		TotalChats: total,
		Recent:     recent,
	}, nil
}

func instructionFor(topic Topic) string {
	if topic == TopicNutrition {
		return "You are Nova, a friendly and knowledgeable AI nutrition assistant. " +
			"Provide helpful, encouraging, and scientifically-backed advice on nutrition, diet, calories, and meal planning. " +
			"Use the user's context (profile, goals) and the provided meal plan content (if any) to personalize your responses."
	}
	return "You are Nova, a friendly and knowledgeable AI fitness and nutrition assistant. " +
		"Provide helpful, encouraging, and scientifically-backed advice. " +
		"Use the user's context (profile, goals, recent workouts) provided to personalize your responses."
}

func buildPrompt(topic Topic, userContext, attachmentText, message string) string {
	var sb strings.Builder
	sb.WriteString("User Context:\n")
	sb.WriteString(userContext)

	if topic == TopicNutrition {
		sb.WriteString("\nMeal Plan Content (if uploaded):\n")
		sb.WriteString(attachmentText)
		sb.WriteString("\n")
	}

	sb.WriteString("\nUser Message:\n")
	sb.WriteString(message)
	sb.WriteString("\n\n")

	if topic == TopicNutrition {
		sb.WriteString("Please provide a helpful, friendly, and accurate response related to nutrition, diet, calories, " +
			"macros, or meal planning based on the user's context and the meal plan content (if provided).")
	} else {
		sb.WriteString("Please provide a helpful, friendly, and accurate response related to fitness, nutrition, " +
			"or the user's goals based on the context provided. If the user's message seems to define a new goal, " +
			"acknowledge it and suggest they might want to formally set it in the Goals section.")
	}

	return sb.String()
}

// ForgetUserContext drops the cached contexts of a user; called after their
// profile, goals or workouts change.
func (s *Service) ForgetUserContext(userID int) {
	if s.contextCache == nil {
		return
	}
	for _, topic := range []Topic{TopicFitness, TopicNutrition} {
		s.contextCache.Del(contextCacheKey(topic, userID))
	}
}

func contextCacheKey(topic Topic, userID int) []byte {
	return []byte(fmt.Sprintf("chat-context::%s::%d", topic, userID))
}
