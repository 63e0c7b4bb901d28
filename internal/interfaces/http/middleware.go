package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/teciza/desk/internal/application/service"
	"github.com/teciza/desk/internal/domain/entity"
)

const (
	requestIDKey = "request_id"
	sessionKey   = "session_user"
	languageKey  = "session_language"

	// HeaderRequestID carries the request ID in both directions
	HeaderRequestID = "X-Request-ID"
)

// RequestID ensures every request has an ID for tracing and logs
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(HeaderRequestID, rid)
		c.Next()
	}
}

// GetRequestID extracts the request ID set by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger logs one line per request
func RequestLogger(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			"request_id", GetRequestID(c),
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"user", c.GetString(sessionKey),
		)
	}
}

// CORS allows the desk frontend to call the API from other origins
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", HeaderRequestID},
		ExposeHeaders: []string{"Location", HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}

	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}

	return cors.New(cfg)
}

// Session resolves the calling user from an HS256 bearer token.
// Requests without a token are served as Guest; invalid tokens are rejected.
func Session(secret string, logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := entity.GuestUser

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if ok && secret != "" {
			sub, err := parseSubject(raw, secret)
			if err != nil {
				logger.Error("Rejected session token", "error", err, "request_id", GetRequestID(c))
				c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
					Success: false,
					Error:   "invalid session token",
				})
				return
			}
			user = sub
		}

		c.Set(sessionKey, user)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func parseSubject(raw, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// Language picks the session language from ?lang= or Accept-Language
func Language(defaultLanguage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := defaultLanguage

		if q := c.Query("lang"); q != "" {
			if tag, err := language.Parse(q); err == nil {
				lang = tag.String()
			}
		} else if header := c.GetHeader("Accept-Language"); header != "" {
			if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
				// keep the whole preference list; the translation bundle matches it
				lang = header
			}
		}

		c.Set(languageKey, lang)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) service.Session {
	user := c.GetString(sessionKey)
	if user == "" {
		user = entity.GuestUser
	}
	return service.Session{
		User:     user,
		Language: c.GetString(languageKey),
	}
}
