package airdrop

import (
	"net/http"

	"airdrop-ledger/pkg/db/pagination"
	"airdrop-ledger/pkg/errutil"
	"airdrop-ledger/services/campaign"
	"airdrop-ledger/services/reach"
	"airdrop-ledger/services/transaction"
	"airdrop-ledger/services/wallet"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Handler exposes claims, wallets, campaigns and content views over HTTP.
type Handler struct {
	orchestrator *Orchestrator
	calculator   *wallet.Calculator
	txs          *transaction.Store
	campaigns    *campaign.Service
	views        *reach.Store
}

type HandlerParams struct {
	fx.In

	Orchestrator *Orchestrator
	Calculator   *wallet.Calculator
	Txs          *transaction.Store
	Campaigns    *campaign.Service
	Views        *reach.Store
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		orchestrator: p.Orchestrator,
		calculator:   p.Calculator,
		txs:          p.Txs,
		campaigns:    p.Campaigns,
		views:        p.Views,
	}
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	v1 := r.Group("/v1")

	v1.POST("/airdrops/claim", h.Claim)

	v1.GET("/wallets/:user_id/balance", h.Balance)
	v1.GET("/wallets/:user_id/transactions", h.Transactions)

	v1.POST("/campaigns", h.CreateCampaign)
	v1.GET("/campaigns/:id", h.GetCampaign)
	v1.POST("/campaigns/:id/publish", h.PublishCampaign)

	v1.POST("/content-views", h.RecordView)
}

func bindError(err error) error {
	return errutil.BadRequest("invalid request body", err)
}

func (h *Handler) Claim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	tx, err := h.orchestrator.Claim(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if tx == nil {
		c.JSON(http.StatusOK, gin.H{"transaction": nil})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

func (h *Handler) Balance(c *gin.Context) {
	b, err := h.calculator.ComputeBalance(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		_ = c.Error(errutil.Internal("failed to compute balance", err))
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) Transactions(c *gin.Context) {
	var p pagination.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	txs, info, err := h.txs.List(c.Request.Context(), transaction.ListFilter{User: c.Param("user_id")}, p)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      txs,
		"page_info": info,
	})
}

func (h *Handler) CreateCampaign(c *gin.Context) {
	var req campaign.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	out, err := h.campaigns.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) GetCampaign(c *gin.Context) {
	out, err := h.campaigns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) PublishCampaign(c *gin.Context) {
	out, err := h.campaigns.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type recordViewRequest struct {
	ContentID string `json:"content_id" binding:"required"`
	AuthorID  string `json:"author_id"`
	ViewerID  string `json:"viewer_id" binding:"required"`
}

func (h *Handler) RecordView(c *gin.Context) {
	var req recordViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	v := &reach.ContentView{
		ContentID: req.ContentID,
		AuthorID:  req.AuthorID,
		ViewerID:  req.ViewerID,
	}
	if err := h.views.Record(c.Request.Context(), v); err != nil {
		_ = c.Error(errutil.Internal("failed to record view", err))
		return
	}
	c.Status(http.StatusNoContent)
}
