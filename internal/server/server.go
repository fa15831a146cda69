// Package server exposes the group ledger as a JSON HTTP API.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/divvyhq/divvy/internal/auth"
	"github.com/divvyhq/divvy/internal/service"
)

// Server wires the services behind a gin router.
type Server struct {
	router      *gin.Engine
	jwtManager  *auth.JWTManager
	auth        auth.Authenticator
	membership  *service.MembershipService
	expenses    *service.ExpenseService
	settlements *service.SettlementService
	balances    *service.BalanceService
}

// New creates a Server with all routes registered.
func New(
	jwtManager *auth.JWTManager,
	authenticator auth.Authenticator,
	membership *service.MembershipService,
	expenses *service.ExpenseService,
	settlements *service.SettlementService,
	balances *service.BalanceService,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), Metrics())

	s := &Server{
		router:      router,
		jwtManager:  jwtManager,
		auth:        authenticator,
		membership:  membership,
		expenses:    expenses,
		settlements: settlements,
		balances:    balances,
	}

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/auth/register", s.handleRegister)
		api.POST("/auth/login", s.handleLogin)

		groups := api.Group("/groups", RequireAuth(jwtManager))
		{
			groups.POST("", s.handleCreateGroup)
			groups.GET("/:id", s.handleGetGroup)
			groups.POST("/:id/archive", s.handleArchiveGroup)
			groups.POST("/:id/members", s.handleAddMember)
			groups.GET("/:id/members", s.handleListMembers)
			groups.POST("/:id/expenses", s.handleAddExpense)
			groups.GET("/:id/expenses", s.handleListExpenses)
			groups.POST("/:id/settlements", s.handleAddSettlement)
			groups.GET("/:id/settlements", s.handleListSettlements)
			groups.GET("/:id/balances", s.handleBalances)
			groups.GET("/:id/settle-up", s.handleSettleUp)
		}
	}

	return s
}

// Handler returns the underlying http.Handler for serving or testing.
func (s *Server) Handler() *gin.Engine {
	return s.router
}
