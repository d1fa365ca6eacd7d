// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gatehouse/internal/platform/apperr"
	"github.com/taibuivan/gatehouse/internal/platform/constants"
	"github.com/taibuivan/gatehouse/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/gatehouse/internal/platform/request"
	"github.com/taibuivan/gatehouse/internal/platform/respond"
	"github.com/taibuivan/gatehouse/internal/platform/throttle"
	"github.com/taibuivan/gatehouse/internal/platform/validate"
	"github.com/taibuivan/gatehouse/internal/session"
)

// # Definitions & Constructors

// SessionLifecycle is the part of the session manager the transport layer needs.
type SessionLifecycle interface {
	ClearAllGuards(context context.Context, sess *session.Session) error
	Lifetime(remember bool) time.Duration
}

// CookieSigner signs the session identifier carried by the cookie.
type CookieSigner interface {
	Sign(sessionID string, timeToLive time.Duration) (string, error)
}

// HandlerConfig carries the transport settings of the login endpoints.
type HandlerConfig struct {
	CookieName   string
	CookieSecure bool

	// Landing maps symbolic destinations to the paths the client redirects to.
	Landing map[Destination]string
}

// Throttles are the login quotas checked before any password work.
//
// A nil policy disables that quota.
type Throttles struct {
	// PerClient is keyed by email and client address.
	PerClient throttle.Policy

	// PerEmail is keyed by email alone and caps distributed guessing.
	PerEmail throttle.Policy
}

// Handler implements the unified login HTTP endpoints.
type Handler struct {
	orchestrator *Orchestrator
	sessions     SessionLifecycle
	signer       CookieSigner
	throttles    []keyedPolicy
	config       HandlerConfig
}

type keyedPolicy struct {
	policy throttle.Policy
	key    func(email, clientIP string) string
}

// NewHandler constructs a new [Handler].
func NewHandler(
	orchestrator *Orchestrator,
	sessions SessionLifecycle,
	signer CookieSigner,
	throttles Throttles,
	config HandlerConfig,
) *Handler {
	handler := &Handler{
		orchestrator: orchestrator,
		sessions:     sessions,
		signer:       signer,
		config:       config,
	}

	if throttles.PerClient != nil {
		handler.throttles = append(handler.throttles, keyedPolicy{throttles.PerClient, clientThrottleKey})
	}
	if throttles.PerEmail != nil {
		handler.throttles = append(handler.throttles, keyedPolicy{throttles.PerEmail, emailThrottleKey})
	}

	return handler
}

// Routes returns a [chi.Router] configured with the login routes.
//
// # Endpoints
//   - POST /unified-login : Signs into the admin or staff guard.
//   - POST /logout        : Clears every guard.
//   - GET  /session       : Reports the active guard.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/unified-login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/session", handler.current)

	return router
}

// # Request & Response Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type loginResponse struct {
	Guard       session.Guard `json:"guard"`
	Destination Destination   `json:"destination"`
	RedirectTo  string        `json:"redirect_to"`
}

type sessionResponse struct {
	Guard     *session.Guard     `json:"guard"`
	Principal *session.Principal `json:"principal"`
}

/*
Login authenticates an admin or staff member and binds the session cookie.

POST /api/v1/auth/unified-login

Description: Validates input, applies the per client and per email quotas, then delegates
to the [Orchestrator]. The cookie is persistent only when remember is set.

Request:
  - Body: loginRequest (Email, Password, Remember)

Response:
  - 200: loginResponse: Established guard and landing route
  - 400: VALIDATION_ERROR: Missing or malformed fields
  - 422: VALIDATION_ERROR on "email": Credentials rejected
  - 429: RATE_LIMITED: Too many attempts for this email, from this client or overall
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.Email = strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, MaxEmailLength).
		Required(FieldPassword, input.Password).
		Custom(FieldPassword, len(input.Password) > MaxPasswordLength, "Password is too long")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)
	printer := printerFor(request.Header.Get("Accept-Language"))
	clientIP := requestutil.ClientIP(request)

	// Quotas are checked before any password work
	for _, quota := range handler.throttles {
		decision, err := quota.policy.Allow(ctx, quota.key(input.Email, clientIP))
		if err != nil {
			logger.WarnContext(ctx, "login_throttle_check_failed", slog.Any("error", err))
			continue
		}
		if !decision.Allowed {
			seconds := decision.RetryAfterSeconds()
			limited := apperr.RateLimited(seconds)
			limited.Message = printer.Sprintf(msgTooManyAttempts, seconds)

			writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(seconds))
			respond.Error(writer, request, limited)
			return
		}
	}

	sess := requestutil.Session(request)
	if sess == nil {
		respond.Error(writer, request, apperr.Internal(errors.New("login: session middleware not mounted")))
		return
	}

	result, err := handler.orchestrator.Authenticate(ctx, sess, Credentials{
		Email:     input.Email,
		Password:  input.Password,
		Remember:  input.Remember,
		IPAddress: clientIP,
		UserAgent: request.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, ErrAuthenticationFailed) {
			respond.Error(writer, request, apperr.UnprocessableField(FieldEmail, printer.Sprintf(msgAuthenticationFailed)))
			return
		}
		respond.Error(writer, request, err)
		return
	}

	if err := handler.setSessionCookie(writer, sess.ID, input.Remember); err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.OK(writer, loginResponse{
		Guard:       result.Guard,
		Destination: result.Destination,
		RedirectTo:  handler.config.Landing[result.Destination],
	})
}

/*
Logout terminates every guard of the current session.

POST /api/v1/auth/logout

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if sess := requestutil.Session(request); sess != nil {
		if err := handler.sessions.ClearAllGuards(request.Context(), sess); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     handler.config.CookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Secure:   handler.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respond.NoContent(writer)
}

/*
Current reports which guard, if any, the session is authenticated under.

GET /api/v1/auth/session

Response:
  - 200: sessionResponse: guard and principal, both null when anonymous
*/
func (handler *Handler) current(writer http.ResponseWriter, request *http.Request) {
	response := sessionResponse{}

	sess := requestutil.Session(request)
	if guard, ok := sess.ActiveGuard(); ok {
		principal, _ := sess.Principal(guard)
		response.Guard = &guard
		response.Principal = &principal
	}

	respond.OK(writer, response)
}

// # Helpers

func (handler *Handler) setSessionCookie(writer http.ResponseWriter, sessionID string, remember bool) error {
	lifetime := handler.sessions.Lifetime(remember)

	token, err := handler.signer.Sign(sessionID, lifetime)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     handler.config.CookieName,
		Value:    token,
		Path:     constants.SessionCookiePath,
		Secure:   handler.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	// Without remember the cookie dies with the browser session
	if remember {
		cookie.Expires = time.Now().Add(lifetime)
	}

	http.SetCookie(writer, cookie)
	return nil
}

func clientThrottleKey(email, clientIP string) string {
	return "login:" + strings.ToLower(email) + "|" + clientIP
}

func emailThrottleKey(email, _ string) string {
	return "login-email:" + strings.ToLower(email)
}
