package rest

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sale-ledger/internal/api/middleware"
	"github.com/feral-file/ff-sale-ledger/internal/api/shared/constants"
	"github.com/feral-file/ff-sale-ledger/internal/api/shared/dto"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/ledger"
	"github.com/feral-file/ff-sale-ledger/internal/schedule"
)

// Ledger is the set of ledger operations served over REST
type Ledger interface {
	Config() ledger.Config

	TokenInfo(ctx context.Context, kind domain.TokenKind) (*ledger.TokenInfo, error)
	BalanceOf(ctx context.Context, kind domain.TokenKind, addr common.Address) (*big.Int, error)
	Allowance(ctx context.Context, kind domain.TokenKind, owner, spender common.Address) (*big.Int, error)
	Transfer(ctx context.Context, caller common.Address, kind domain.TokenKind, to common.Address, amount *big.Int) error
	Approve(ctx context.Context, caller common.Address, kind domain.TokenKind, spender common.Address, amount *big.Int) error
	TransferFrom(ctx context.Context, caller common.Address, kind domain.TokenKind, from, to common.Address, amount *big.Int) error
	Pause(ctx context.Context, caller common.Address, kind domain.TokenKind) error
	Unpause(ctx context.Context, caller common.Address, kind domain.TokenKind) error
	Mint(ctx context.Context, caller common.Address, kind domain.TokenKind, to common.Address, amount *big.Int) error
	Burn(ctx context.Context, caller common.Address, kind domain.TokenKind, from common.Address, amount *big.Int) error

	Stage(ctx context.Context) (domain.Stage, error)
	IsSaleStarted(ctx context.Context) (bool, error)
	Schedule(ctx context.Context) (domain.SaleSchedule, []schedule.WindowStatus, error)
	Buy(ctx context.Context, caller common.Address, amount *big.Int) (*ledger.PurchaseResult, error)
	Redeem(ctx context.Context, caller common.Address, amount *big.Int) (*ledger.ConversionResult, error)
	P2Swap(ctx context.Context, caller common.Address, amount *big.Int) (*ledger.ConversionResult, error)
	SetSaleStartTime(ctx context.Context, caller common.Address, start int64) error
	SetWindow(ctx context.Context, caller common.Address, name domain.WindowName, w domain.Window) error
	AddWhitelist(ctx context.Context, caller common.Address, addresses []common.Address) error
	RemoveWhitelist(ctx context.Context, caller common.Address, addresses []common.Address) error
	IsWhitelisted(ctx context.Context, addr common.Address) (bool, error)
	Whitelist(ctx context.Context) ([]common.Address, error)

	StakeToken(ctx context.Context, caller common.Address, amount *big.Int) (*domain.StakeRecord, error)
	ClaimStakedInterest(ctx context.Context, caller common.Address) (*big.Int, error)
	UnstakeToken(ctx context.Context, caller common.Address) (*ledger.UnstakeResult, error)
	StakedData(ctx context.Context, addr common.Address) (*domain.StakeView, error)

	Referral(ctx context.Context, caller, to common.Address, amount *big.Int) error
	Events(ctx context.Context, afterSeq uint64, limit int) ([]domain.Event, error)
}

// Handler defines the interface for REST API handlers
type Handler interface {
	// GET /api/v1/tokens/:token
	GetToken(c *gin.Context)
	// GET /api/v1/tokens/:token/balances/:address
	GetBalance(c *gin.Context)
	// GET /api/v1/tokens/:token/allowances/:owner/:spender
	GetAllowance(c *gin.Context)
	// POST /api/v1/tokens/:token/transfer
	Transfer(c *gin.Context)
	// POST /api/v1/tokens/:token/approve
	Approve(c *gin.Context)
	// POST /api/v1/tokens/:token/transfer-from
	TransferFrom(c *gin.Context)
	// POST /api/v1/tokens/:token/pause (owner)
	Pause(c *gin.Context)
	// POST /api/v1/tokens/:token/unpause (owner)
	Unpause(c *gin.Context)
	// POST /api/v1/tokens/:token/mint (owner)
	Mint(c *gin.Context)
	// POST /api/v1/tokens/:token/burn (owner)
	Burn(c *gin.Context)

	// GET /api/v1/sale
	GetSale(c *gin.Context)
	// POST /api/v1/sale/buy
	Buy(c *gin.Context)
	// POST /api/v1/sale/redeem
	Redeem(c *gin.Context)
	// POST /api/v1/sale/p2swap
	P2Swap(c *gin.Context)
	// PUT /api/v1/sale/start-time (owner)
	SetSaleStartTime(c *gin.Context)
	// PUT /api/v1/sale/windows/:window (owner)
	SetWindow(c *gin.Context)
	// GET /api/v1/sale/whitelist
	GetWhitelist(c *gin.Context)
	// GET /api/v1/sale/whitelist/:address
	GetWhitelistStatus(c *gin.Context)
	// POST /api/v1/sale/whitelist (owner)
	AddWhitelist(c *gin.Context)
	// DELETE /api/v1/sale/whitelist (owner)
	RemoveWhitelist(c *gin.Context)

	// GET /api/v1/staking
	GetStakingPool(c *gin.Context)
	// GET /api/v1/staking/:address
	GetStake(c *gin.Context)
	// POST /api/v1/staking/stake
	Stake(c *gin.Context)
	// POST /api/v1/staking/claim
	ClaimInterest(c *gin.Context)
	// POST /api/v1/staking/unstake
	Unstake(c *gin.Context)

	// POST /api/v1/referrals (owner)
	Referral(c *gin.Context)

	// GET /api/v1/events?after=<sequence>&limit=<limit>
	ListEvents(c *gin.Context)

	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	ledger Ledger
}

// NewHandler creates a new REST API handler
func NewHandler(l Ledger) Handler {
	return &handler{ledger: l}
}

func tokenParam(c *gin.Context) (domain.TokenKind, bool) {
	kind, err := domain.ParseTokenKind(c.Param("token"))
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return kind, true
}

func addressParam(c *gin.Context, name string) (common.Address, bool) {
	addr, err := domain.ParseAddress(c.Param(name))
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("Invalid %s", name), c.Param(name))
		return common.Address{}, false
	}
	return addr, true
}

func caller(c *gin.Context) (common.Address, bool) {
	addr, ok := middleware.Caller(c)
	if !ok {
		respondUnauthorized(c)
	}
	return addr, ok
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

func respondOK(c *gin.Context) {
	c.JSON(http.StatusOK, dto.OperationResponse{Status: "ok"})
}

func (h *handler) GetToken(c *gin.Context) {
	kind, valid := tokenParam(c)
	if !valid {
		return
	}
	info, err := h.ledger.TokenInfo(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapTokenInfo(info))
}

func (h *handler) GetBalance(c *gin.Context) {
	kind, valid := tokenParam(c)
	if !valid {
		return
	}
	addr, valid := addressParam(c, "address")
	if !valid {
		return
	}
	balance, err := h.ledger.BalanceOf(c.Request.Context(), kind, addr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Token: kind, Address: addr.Hex(), Balance: dto.NewAmount(balance)})
}

func (h *handler) GetAllowance(c *gin.Context) {
	kind, valid := tokenParam(c)
	if !valid {
		return
	}
	owner, valid := addressParam(c, "owner")
	if !valid {
		return
	}
	spender, valid := addressParam(c, "spender")
	if !valid {
		return
	}
	allowance, err := h.ledger.Allowance(c.Request.Context(), kind, owner, spender)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AllowanceResponse{
		Token:     kind,
		Owner:     owner.Hex(),
		Spender:   spender.Hex(),
		Allowance: dto.NewAmount(allowance),
	})
}

func (h *handler) Transfer(c *gin.Context) {
	kind, valid := tokenParam(c)
	if !valid {
		return
	}
	from, valid := caller(c)
	if !valid {
		return
	}
	var req dto.TransferRequest
	if !bind(c, &req) {
		return
	}
	to, amount, err := req.Parse()
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.ledger.Transfer(c.Request.Context(), from, kind, to, amount); err != nil {
		respondError(c, err, zap.String("op", "transfer"))
		return
	}
	respondOK(c)
}

func (h *handler) Approve(c *gin.Context) {
	kind, valid := tokenParam(c)
	if !valid {
		return
	}
	owner, valid := caller(c)
	if !valid {
		return
	}
	var req dto.ApproveRequest
	if !bind(c, &req) {
		return
	}
	spender, amount, err := req.Parse()
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.ledger.Approve(c.Request.Context(), owner, kind, spender, amount); err != nil {
		respondError(c, err, zap.String("op", "approve"))
		return
	}
	respondOK(c)
}

func (h *handler) TransferFrom(c *gin.Context) {
	kind, valid := tokenParam(c)
	if !valid {
		return
	}
	spender, valid := caller(c)
	if !valid {
		return
	}
	var req dto.TransferFromRequest
	if !bind(c, &req) {
		return
	}
	from, to, amount, err := req.Parse()
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.ledger.TransferFrom(c.Request.Context(), spender, kind, from, to, amount); err != nil {
		respondError(c, err, zap.String("op", "transfer_from"))
		return
	}
	respondOK(c)
}

func (h *handler) Pause(c *gin.Context) {
	h.setPaused(c, true)
}

func (h *handler) Unpause(c *gin.Context) {
	h.setPaused(c, false)
}

func (h *handler) setPaused(c *gin.Context, paused bool) {
	kind, valid := tokenParam(c)
	if !valid {
		return
	}
	who, valid := caller(c)
	if !valid {
		return
	}
	var err error
	if paused {
		err = h.ledger.Pause(c.Request.Context(), who, kind)
	} else {
		err = h.ledger.Unpause(c.Request.Context(), who, kind)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c)
}

func (h *handler) Mint(c *gin.Context) {
	h.supplyChange(c, h.ledger.Mint)
}

func (h *handler) Burn(c *gin.Context) {
	h.supplyChange(c, h.ledger.Burn)
}

func (h *handler) supplyChange(c *gin.Context, op func(context.Context, common.Address, domain.TokenKind, common.Address, *big.Int) error) {
	kind, valid := tokenParam(c)
	if !valid {
		return
	}
	who, valid := caller(c)
	if !valid {
		return
	}
	var req dto.AccountAmountRequest
	if !bind(c, &req) {
		return
	}
	addr, amount, err := req.Parse()
	if err != nil {
		respondError(c, err)
		return
	}
	if err := op(c.Request.Context(), who, kind, addr, amount); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c)
}

func (h *handler) GetSale(c *gin.Context) {
	ctx := c.Request.Context()
	stage, err := h.ledger.Stage(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	started, err := h.ledger.IsSaleStarted(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	s, statuses, err := h.ledger.Schedule(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapSale(stage, started, s, statuses, h.ledger.Config()))
}

// amountOp binds an amount body and runs op for the caller
func (h *handler) amountOp(c *gin.Context, op func(ctx context.Context, who common.Address, amount *big.Int) (any, error)) {
	who, valid := caller(c)
	if !valid {
		return
	}
	var req dto.AmountRequest
	if !bind(c, &req) {
		return
	}
	amount, err := req.Parse()
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := op(c.Request.Context(), who, amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) Buy(c *gin.Context) {
	h.amountOp(c, func(ctx context.Context, who common.Address, amount *big.Int) (any, error) {
		result, err := h.ledger.Buy(ctx, who, amount)
		if err != nil {
			return nil, err
		}
		return dto.PurchaseResponse{
			Stage:    result.Stage.String(),
			Paid:     dto.NewAmount(result.Paid),
			Received: dto.NewAmount(result.Received),
		}, nil
	})
}

func (h *handler) Redeem(c *gin.Context) {
	h.amountOp(c, func(ctx context.Context, who common.Address, amount *big.Int) (any, error) {
		result, err := h.ledger.Redeem(ctx, who, amount)
		if err != nil {
			return nil, err
		}
		return dto.ConversionResponse{Burned: dto.NewAmount(result.Burned), Received: dto.NewAmount(result.Received)}, nil
	})
}

func (h *handler) P2Swap(c *gin.Context) {
	h.amountOp(c, func(ctx context.Context, who common.Address, amount *big.Int) (any, error) {
		result, err := h.ledger.P2Swap(ctx, who, amount)
		if err != nil {
			return nil, err
		}
		return dto.ConversionResponse{Burned: dto.NewAmount(result.Burned), Received: dto.NewAmount(result.Received)}, nil
	})
}

func (h *handler) Stake(c *gin.Context) {
	h.amountOp(c, func(ctx context.Context, who common.Address, amount *big.Int) (any, error) {
		record, err := h.ledger.StakeToken(ctx, who, amount)
		if err != nil {
			return nil, err
		}
		return dto.MapStakeRecord(who, record), nil
	})
}

func (h *handler) SetSaleStartTime(c *gin.Context) {
	who, valid := caller(c)
	if !valid {
		return
	}
	var req dto.SaleStartRequest
	if !bind(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := h.ledger.SetSaleStartTime(c.Request.Context(), who, *req.StartTime); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c)
}

func (h *handler) SetWindow(c *gin.Context) {
	name, err := domain.ParseWindowName(c.Param("window"))
	if err != nil {
		respondError(c, err)
		return
	}
	who, valid := caller(c)
	if !valid {
		return
	}
	var req dto.WindowRequest
	if !bind(c, &req) {
		return
	}
	if err := h.ledger.SetWindow(c.Request.Context(), who, name, req.Window()); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c)
}

func (h *handler) GetWhitelist(c *gin.Context) {
	addresses, err := h.ledger.Whitelist(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.WhitelistResponse{Addresses: make([]string, 0, len(addresses))}
	for _, a := range addresses {
		resp.Addresses = append(resp.Addresses, a.Hex())
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetWhitelistStatus(c *gin.Context) {
	addr, valid := addressParam(c, "address")
	if !valid {
		return
	}
	listed, err := h.ledger.IsWhitelisted(c.Request.Context(), addr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WhitelistStatusResponse{Address: addr.Hex(), Whitelisted: listed})
}

func (h *handler) AddWhitelist(c *gin.Context) {
	h.whitelistChange(c, h.ledger.AddWhitelist)
}

func (h *handler) RemoveWhitelist(c *gin.Context) {
	h.whitelistChange(c, h.ledger.RemoveWhitelist)
}

func (h *handler) whitelistChange(c *gin.Context, op func(context.Context, common.Address, []common.Address) error) {
	who, valid := caller(c)
	if !valid {
		return
	}
	var req dto.WhitelistRequest
	if !bind(c, &req) {
		return
	}
	addresses, err := req.Parse()
	if err != nil {
		respondError(c, err)
		return
	}
	if err := op(c.Request.Context(), who, addresses); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c)
}

func (h *handler) GetStakingPool(c *gin.Context) {
	ctx := c.Request.Context()
	cfg := h.ledger.Config()
	staked, err := h.ledger.BalanceOf(ctx, domain.TokenMain, cfg.StakingPool)
	if err != nil {
		respondError(c, err)
		return
	}
	reserve, err := h.ledger.BalanceOf(ctx, domain.TokenMain, cfg.RewardReserve)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StakingPoolResponse{
		Pool:          cfg.StakingPool.Hex(),
		RewardReserve: cfg.RewardReserve.Hex(),
		APRBps:        cfg.StakingAPRBps,
		Staked:        dto.NewAmount(staked),
		Reserve:       dto.NewAmount(reserve),
	})
}

func (h *handler) GetStake(c *gin.Context) {
	addr, valid := addressParam(c, "address")
	if !valid {
		return
	}
	view, err := h.ledger.StakedData(c.Request.Context(), addr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapStakeView(addr, view))
}

func (h *handler) ClaimInterest(c *gin.Context) {
	who, valid := caller(c)
	if !valid {
		return
	}
	claimed, err := h.ledger.ClaimStakedInterest(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ClaimResponse{Claimed: dto.NewAmount(claimed)})
}

func (h *handler) Unstake(c *gin.Context) {
	who, valid := caller(c)
	if !valid {
		return
	}
	result, err := h.ledger.UnstakeToken(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UnstakeResponse{
		Principal: dto.NewAmount(result.Principal),
		Interest:  dto.NewAmount(result.Interest),
	})
}

func (h *handler) Referral(c *gin.Context) {
	who, valid := caller(c)
	if !valid {
		return
	}
	var req dto.AccountAmountRequest
	if !bind(c, &req) {
		return
	}
	to, amount, err := req.Parse()
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.ledger.Referral(c.Request.Context(), who, to, amount); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c)
}

func (h *handler) ListEvents(c *gin.Context) {
	after := uint64(0)
	if s := c.Query("after"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			respondBadRequest(c, "Invalid after", s)
			return
		}
		after = v
	}
	limit := constants.DEFAULT_EVENTS_LIMIT
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > constants.MAX_EVENTS_LIMIT {
			respondBadRequest(c, fmt.Sprintf("limit must be between 1 and %d", constants.MAX_EVENTS_LIMIT), s)
			return
		}
		limit = v
	}

	events, err := h.ledger.Events(c.Request.Context(), after, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapEvents(events, limit))
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": constants.SERVICE_NAME,
	})
}
