package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/auth"
	"github.com/2beens/fitassist/internal/bodymetrics"
	"github.com/2beens/fitassist/internal/middleware"
	"github.com/2beens/fitassist/internal/telemetry/metrics"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=users_mocks_test.go -package=users_test

type usersRepo interface {
	Create(ctx context.Context, params NewUserParams) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id int, profile Profile) (*User, error)
}

type sessionService interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type RegisterRequest struct {
	Profile
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type BMIResponse struct {
	BMI      float64              `json:"bmi"`
	Category bodymetrics.Category `json:"category"`
}

type Handler struct {
	repo         usersRepo
	sessions     sessionService
	passwordCost int
}

func NewHandler(repo usersRepo, sessions sessionService, passwordCost int) *Handler {
	return &Handler{
		repo:         repo,
		sessions:     sessions,
		passwordCost: passwordCost,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	allowedPerMin int,
) {
	mainRouter.HandleFunc("/profile", handler.HandleGetProfile).Methods("GET", "OPTIONS").Name("get-profile")
	mainRouter.HandleFunc("/profile", handler.HandleUpdateProfile).Methods("PUT", "OPTIONS").Name("update-profile")
	mainRouter.HandleFunc("/bmi", handler.HandleBMI).Methods("GET", "OPTIONS").Name("bmi")

	loginSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	loginSubrouter.
		HandleFunc("/register", handler.HandleRegister).
		Methods("POST", "OPTIONS").Name("register")
	loginSubrouter.
		HandleFunc("/login", handler.HandleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", handler.HandleLogout).
		Methods("GET", "OPTIONS").Name("logout")

	// rate limit the auth endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", allowedPerMin, metricsManager))
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("register, unmarshal json params: %s", err)
		http.Error(w, "register failed", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPasswordWithCost(req.Password, handler.passwordCost)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	user, err := handler.repo.Create(ctx, NewUserParams{
		Profile:      req.Profile,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			http.Error(w, "email already registered, please use a different email address", http.StatusConflict)
		case errors.Is(err, apperr.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("register [%s]: %s", req.Email, err)
			http.Error(w, "registration failed, please try again", http.StatusInternalServerError)
		}
		return
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	log.Debugf("new user registered: %d", user.ID)
	pkg.WriteJSON(w, user, http.StatusCreated)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	var loginReq LoginRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Tracef("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusBadRequest)
			return
		}
		loginReq = LoginRequest{
			Email:    r.Form.Get("email"),
			Password: r.Form.Get("password"),
		}
	}

	if loginReq.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}
	if loginReq.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Tracef("[email] failed login attempt for: %s", loginReq.Email)
			http.Error(w, "invalid credentials, please check your email and password", http.StatusUnauthorized)
			return
		}
		log.Errorf("login, get user: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(loginReq.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %d", user.ID)
		http.Error(w, "invalid credentials, please check your email and password", http.StatusUnauthorized)
		return
	}

	token, err := handler.sessions.Login(ctx, user.ID, time.Now())
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	log.Tracef("new login success: %d", user.ID)
	pkg.WriteJSON(w, LoginResponse{Token: token, User: user}, http.StatusOK)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	authToken := r.Header.Get(auth.TokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.sessions.Logout(ctx, authToken)
	if err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.get-profile")
	defer span.End()

	user, ok := handler.currentUser(ctx, w)
	if !ok {
		return
	}

	pkg.WriteJSON(w, user, http.StatusOK)
}

func (handler *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.update-profile")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var profile Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "update profile failed", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.UpdateProfile(ctx, userID, profile)
	if err != nil {
		if status := apperr.HTTPStatus(err); status < http.StatusInternalServerError {
			http.Error(w, err.Error(), status)
			return
		}
		log.Errorf("update profile %d: %s", userID, err)
		http.Error(w, "update profile failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, user, http.StatusOK)
}

func (handler *Handler) HandleBMI(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.bmi")
	defer span.End()

	user, ok := handler.currentUser(ctx, w)
	if !ok {
		return
	}

	bmi, err := bodymetrics.ComputeBMI(user.WeightKg, user.HeightCm)
	if err != nil {
		http.Error(w, "please update your profile with valid height and weight", http.StatusBadRequest)
		return
	}

	pkg.WriteJSON(w, BMIResponse{
		BMI:      bmi,
		Category: bodymetrics.ClassifyBMI(bmi),
	}, http.StatusOK)
}

func (handler *Handler) currentUser(ctx context.Context, w http.ResponseWriter) (*User, bool) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}

	user, err := handler.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return nil, false
		}
		log.Errorf("get user %d: %s", userID, err)
		http.Error(w, "get user failed", http.StatusInternalServerError)
		return nil, false
	}

	return user, true
}
