package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-sale-ledger/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, auth *middleware.Authenticator) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")

	// Public reads
	v1.GET("/tokens/:token", handler.GetToken)
	v1.GET("/tokens/:token/balances/:address", handler.GetBalance)
	v1.GET("/tokens/:token/allowances/:owner/:spender", handler.GetAllowance)
	v1.GET("/sale", handler.GetSale)
	v1.GET("/sale/whitelist", handler.GetWhitelist)
	v1.GET("/sale/whitelist/:address", handler.GetWhitelistStatus)
	v1.GET("/staking", handler.GetStakingPool)
	v1.GET("/staking/:address", handler.GetStake)
	v1.GET("/events", handler.ListEvents)

	// Operations on behalf of the authenticated caller; API keys act as the owner
	authed := v1.Group("", middleware.Auth(auth))
	authed.POST("/tokens/:token/transfer", handler.Transfer)
	authed.POST("/tokens/:token/approve", handler.Approve)
	authed.POST("/tokens/:token/transfer-from", handler.TransferFrom)
	authed.POST("/tokens/:token/pause", handler.Pause)
	authed.POST("/tokens/:token/unpause", handler.Unpause)
	authed.POST("/tokens/:token/mint", handler.Mint)
	authed.POST("/tokens/:token/burn", handler.Burn)

	authed.POST("/sale/buy", handler.Buy)
	authed.POST("/sale/redeem", handler.Redeem)
	authed.POST("/sale/p2swap", handler.P2Swap)
	authed.PUT("/sale/start-time", handler.SetSaleStartTime)
	authed.PUT("/sale/windows/:window", handler.SetWindow)
	authed.POST("/sale/whitelist", handler.AddWhitelist)
	authed.DELETE("/sale/whitelist", handler.RemoveWhitelist)

	authed.POST("/staking/stake", handler.Stake)
	authed.POST("/staking/claim", handler.ClaimInterest)
	authed.POST("/staking/unstake", handler.Unstake)

	authed.POST("/referrals", handler.Referral)
}
