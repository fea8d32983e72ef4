package payer

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, req *model.CreatePayerRequest) (*model.Payer, error)
	List(ctx context.Context, req *model.ListPayersRequest) ([]*model.Payer, error)
	Get(ctx context.Context, id int64) (*model.Payer, error)
	Update(ctx context.Context, id int64, req *model.UpdatePayerRequest) (*model.Payer, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public, staff *gin.RouterGroup) {
	payers := public.Group("/payers")
	{
		payers.GET("", h.ListPayers)
		payers.GET("/:id", h.GetPayer)
	}

	managed := staff.Group("/payers")
	{
		managed.POST("", h.CreatePayer)
		managed.PUT("/:id", h.UpdatePayer)
		managed.DELETE("/:id", h.DeletePayer)
	}
}

func (h *Handler) CreatePayer(c *gin.Context) {
	var req model.CreatePayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	payer, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, payer)
}

func (h *Handler) ListPayers(c *gin.Context) {
	var req model.ListPayersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	payers, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, payers)
}

func (h *Handler) GetPayer(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	payer, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, payer)
}

func (h *Handler) UpdatePayer(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdatePayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	payer, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, payer)
}

func (h *Handler) DeletePayer(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "payer deleted")
}
