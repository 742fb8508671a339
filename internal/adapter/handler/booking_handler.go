package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
	"github.com/agiledatalabs/booking-management-system/internal/core/services"
)

type BookingService interface {
	Block(ctx context.Context, req services.BlockRequest) (*services.BlockResponse, error)
	Confirm(ctx context.Context, req services.ConfirmRequest) (*domain.Order, error)
	Availability(ctx context.Context, resourceID, bookingDate string) ([]services.SlotAvailability, error)
}

type BookingHandler struct {
	svc BookingService
	log *zap.Logger
}

func NewBookingHandler(svc BookingService, log *zap.Logger) *BookingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{svc: svc, log: log}
}

func (h *BookingHandler) BlockOrder(c *gin.Context) {
	var req services.BlockRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Block(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) ConfirmOrder(c *gin.Context) {
	var req services.ConfirmRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Confirm(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order confirmed successfully.",
		"order":   order,
	})
}

func (h *BookingHandler) GetAvailability(c *gin.Context) {
	slots, err := h.svc.Availability(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resourceId":  c.Param("id"),
		"bookingDate": c.Query("date"),
		"slots":       slots,
	})
}
