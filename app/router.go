// Package app wires every endpoint of the access service together
package app

import (
	"fmt"
	"time"

	"hikesoc/access-api/app/committee"
	"hikesoc/access-api/app/qr"
	"hikesoc/access-api/app/root"
	"hikesoc/access-api/app/whatsapp"
	"hikesoc/access-api/config"
	"hikesoc/access-api/db"
	"hikesoc/access-api/internal"
	"hikesoc/access-api/internal/service"
	"hikesoc/access-api/internal/store"
	"hikesoc/access-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cacheStore = persist.NewMemoryStore(time.Minute)

func NewRouter() (*gin.Engine, error) {
	makeLogger()

	database, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	gateway := service.NewConfigGateway()
	tokens := store.NewTokenStore(database)

	d := &internal.Deps{
		DB:       database,
		Tokens:   tokens,
		QRTokens: store.NewQRStore(database),
		Requests: store.NewRequestStore(database),
		Issuer:   service.NewIssuer(tokens),
		Logger:   service.NewAccessLogger(database),
		Config:   gateway,
	}

	if _, err := service.StartTokenSweep(tokens); err != nil {
		return nil, fmt.Errorf("failed to schedule token sweep, %w", err)
	}

	if config.SweepOnStart() {
		if _, err := tokens.ExpireSweep(); err != nil {
			zap.L().Error("Startup token sweep failed", zap.Error(err))
		}
	}

	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
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

				return fields
			},
		}),
		middleware.NewAuthMiddleware(),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	turnstile := middleware.NewTurnstileMiddleware()
	redeemLimit := middleware.NewRedeemLimiter(viper.GetInt("ratelimit.redeem_per_second"))
	requestLimit := middleware.NewFixedWindowLimiter(
		gateway.Redis(),
		"manual_request",
		viper.GetInt("ratelimit.request_max"),
		viper.GetDuration("ratelimit.request_window"),
	)
	smallBody := middleware.BodySizeLimiter(1 << 20)
	committeeOnly := middleware.RequireRoles(middleware.RoleCommittee, middleware.RoleTreasurer)

	// POST /join			-> Redeems an email-link token
	router.POST("/join", redeemLimit, smallBody, func(c *gin.Context) { whatsapp.Join(c, d) })

	// GET /qr/:token		-> Redeems a QR token and redirects into the group
	router.GET("/qr/:token", redeemLimit, func(c *gin.Context) { qr.Redirect(c, d) })

	m := router.Group("/api", smallBody)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// POST /api/whatsapp-verify	-> Redeems a 6-digit verification code
		m.POST("/whatsapp-verify", redeemLimit, func(c *gin.Context) { whatsapp.Verify(c, d) })

		// POST /api/whatsapp-redirect	-> Redeems a 12-hex short code
		m.POST("/whatsapp-redirect", redeemLimit, func(c *gin.Context) { whatsapp.Redirect(c, d) })

		// POST /api/whatsapp-code	-> Mails a fresh 6-digit code
		m.POST("/whatsapp-code", turnstile, requestLimit, func(c *gin.Context) { whatsapp.RequestCode(c, d) })

		// POST /api/whatsapp-request	-> Files a manual join request
		m.POST("/whatsapp-request", turnstile, requestLimit, func(c *gin.Context) { whatsapp.RequestManual(c, d) })
	}

	adm := m.Group("/committee", committeeOnly)
	{
		// GET /api/committee/whatsapp-config	-> Shows the invite URL and QR switch
		adm.GET("/whatsapp-config", func(c *gin.Context) { committee.ConfigGet(c, d) })

		// POST /api/committee/whatsapp-config	-> Updates either config value
		adm.POST("/whatsapp-config", func(c *gin.Context) { committee.ConfigUpdate(c, d) })

		// GET /api/committee/qr-tokens		-> Lists all QR tokens
		adm.GET("/qr-tokens", func(c *gin.Context) { committee.QRTokenList(c, d) })

		// POST /api/committee/qr-tokens	-> Mints a new QR token
		adm.POST("/qr-tokens", func(c *gin.Context) { committee.QRTokenCreate(c, d) })

		// PATCH /api/committee/qr-tokens/:id	-> Enables or disables one token
		adm.PATCH("/qr-tokens/:id", func(c *gin.Context) { committee.QRTokenToggle(c, d) })

		// DELETE /api/committee/qr-tokens/:id	-> Deletes a token
		adm.DELETE("/qr-tokens/:id", func(c *gin.Context) { committee.QRTokenDelete(c, d) })

		// GET /api/committee/qr-tokens/:id/image -> Printable PNG for a token
		adm.GET("/qr-tokens/:id/image", cacheFor(5*60), func(c *gin.Context) { committee.QRTokenImage(c, d) })

		// POST /api/committee/short-codes	-> Issues a short code on the spot
		adm.POST("/short-codes", func(c *gin.Context) { committee.ShortCodeCreate(c, d) })

		// GET /api/committee/access-logs	-> Pages through the audit trail
		adm.GET("/access-logs", cacheFor(15), func(c *gin.Context) { committee.AccessLogList(c, d) })

		// GET /api/committee/requests		-> Lists pending manual requests
		adm.GET("/requests", func(c *gin.Context) { committee.RequestList(c, d) })

		// POST /api/committee/requests/:id/approve -> Approves and mails a join link
		adm.POST("/requests/:id/approve", func(c *gin.Context) { committee.RequestApprove(c, d) })

		// POST /api/committee/requests/:id/reject  -> Rejects a request
		adm.POST("/requests/:id/reject", func(c *gin.Context) { committee.RequestReject(c, d) })
	}

	return router, nil
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(cacheStore, time.Second*time.Duration(sec))
}
