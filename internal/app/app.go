package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shuke0908/quantauth/internal/config"
	httpx "github.com/shuke0908/quantauth/internal/http"
	"github.com/shuke0908/quantauth/internal/http/handlers"
	"github.com/shuke0908/quantauth/internal/http/metrics"
	"github.com/shuke0908/quantauth/internal/http/middleware"
	"github.com/shuke0908/quantauth/internal/infrastructure/auth"
	"github.com/shuke0908/quantauth/internal/services"
)

func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.RedisClient.Ping(context.Background()); err != nil {
		return err
	}

	cas, err := auth.NewCasbinService(c.DB, cfg.CasbinModelPath)
	if err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	cookies := handlers.NewCookieWriter(cfg.Production, cfg.RefreshTTL)
	authH := handlers.NewAuthHandlers(c.AuthSvc, cookies, m, c.Log)
	polH := &handlers.PolicyHandlers{PolicySvc: services.NewPolicyService(cas.E)}
	admH := handlers.NewAdminHandlers(c.UserRepo)

	jwtMW := middleware.NewAuthMW(c.TokenSvc, m.ObserveVerification())
	casbinMW := middleware.NewCasbinMW(cas.E)

	r := httpx.BuildRouter(httpx.RouterConfig{AllowedOrigin: cfg.CORSAllowedOrigin}, authH, polH, admH, jwtMW, casbinMW)

	policies, _ := cas.E.GetPolicy()
	if len(policies) == 0 {
		cas.E.AddPolicy("role_admin", "/admin/*", "(GET|POST|PUT|DELETE)")
		cas.E.AddPolicy("role_superadmin", "/admin/*", "(GET|POST|PUT|DELETE)")
		_ = cas.E.SavePolicy()
		c.Log.Info("casbin: seeded default policies")
	}

	addr := ":" + cfg.Port
	c.Log.WithField("addr", addr).Info("listening")
	return http.ListenAndServe(addr, r)
}
