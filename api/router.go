// Package api contains all endpoints available
package api

import (
	"time"

	"bitwise74/avatar-api/middleware"
	"bitwise74/avatar-api/ratelimit"
	"bitwise74/avatar-api/security"
	"bitwise74/avatar-api/service"
	"bitwise74/avatar-api/ws"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Argon  *security.ArgonHash
	Auth   *service.Auth
	Tokens *service.Tokens
	Mailer *service.Mailer
	Hub    *ws.Hub

	LoginLimiter   *ratelimit.Limiter
	MessageLimiter *ratelimit.Limiter
}

func NewRouter(db *gorm.DB) (*API, error) {
	a := &API{
		DB:     db,
		Argon:  security.NewArgon(),
		Auth:   service.NewAuth(db),
		Tokens: service.NewTokens(db),
		Mailer: service.NewMailer(),
		Hub:    ws.NewHub(),
		LoginLimiter: ratelimit.New(
			ratelimit.NewMemoryStore(),
			viper.GetInt("limits.login_attempts"),
			time.Duration(viper.GetInt("limits.login_window_minutes"))*time.Minute,
		),
		MessageLimiter: ratelimit.New(
			ratelimit.NewMemoryStore(),
			viper.GetInt("limits.message_burst"),
			time.Duration(viper.GetInt("limits.message_window_seconds"))*time.Second,
		),
	}

	makeLogger()

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{viper.GetString("cors.origin")},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	auth := middleware.NewAuthMiddleware(db)
	ipLimit := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		Burst:             10,
	})

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a session token
		main.HEAD("/validate", auth, a.Validate)

		// GET /api/verify-email	-> Consumes an email verification token
		main.GET("/verify-email", a.UserVerify)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20), ipLimit)
	{
		// GET /api/users		-> Returns the profile of the logged in user
		users.GET("", auth, a.UserFetch)

		// POST /api/users 		-> Registers a new user
		users.POST("", a.UserRegister)

		// POST /api/users/login 	-> Logs in a user and sets the session cookie
		users.POST("/login", a.UserLogin)

		// POST /api/users/oauth 	-> Creates or links an account from a federated identity
		users.POST("/oauth", a.UserOAuth)
	}

	resets := main.Group("/password-reset", middleware.BodySizeLimiter(1<<20), ipLimit)
	{
		// POST /api/password-reset/request	-> Mails a reset link
		resets.POST("/request", a.PasswordResetRequest)

		// POST /api/password-reset/reset	-> Consumes a reset token
		resets.POST("/reset", a.PasswordResetReset)
	}

	avatars := main.Group("/avatars", auth, middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/avatars		-> Lists the user's avatars
		avatars.GET("", cacheForUser(30), a.AvatarList)

		// POST /api/avatars		-> Creates a new avatar
		avatars.POST("", a.AvatarCreate)

		// GET /api/avatars/:id		-> Returns a single avatar
		avatars.GET("/:id", a.AvatarFetch)

		// PUT /api/avatars/:id		-> Updates an avatar
		avatars.PUT("/:id", a.AvatarUpdate)

		// DELETE /api/avatars/:id	-> Deletes an avatar
		avatars.DELETE("/:id", a.AvatarDelete)
	}

	messages := main.Group("/messages", auth, middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/messages		-> Persists a chat message (rate limited)
		messages.POST("", a.MessageCreate)

		// GET /api/messages		-> Returns the user's messages paginated
		messages.GET("", a.MessageList)

		// DELETE /api/messages		-> Deletes a message owned by the user
		messages.DELETE("", a.MessageDelete)
	}

	relay := main.Group("/ws", auth)
	{
		// GET /api/ws			-> Upgrades to the chat relay
		relay.GET("", a.WSConnect)

		// GET /api/ws/handshake	-> Handshake probe, returns the resolved relay URL
		relay.GET("/handshake", a.WSHandshake)
	}

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

// cacheForUser caches GET responses per user, not per URI alone, so
// one user's listing can never be served to another
func cacheForUser(sec int) gin.HandlerFunc {
	return cache.Cache(store, time.Second*time.Duration(sec),
		cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
			return true, cache.Strategy{
				CacheKey: c.GetString("userID") + ":" + c.Request.RequestURI,
			}
		}),
	)
}
