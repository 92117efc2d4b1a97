package api

import (
	"net/http"

	"estimate-service/internal/models"

	"github.com/gin-gonic/gin"
)

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) createEstimate(c *gin.Context) {
	var req models.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	result, err := h.svc.Estimates.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := "Estimate request received"
	if !result.EmailSent {
		message = "Estimate request received; confirmation email could not be sent"
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"data":      result.Request,
		"emailSent": result.EmailSent,
		"message":   message,
	})
}

func (h *Handler) listEstimates(c *gin.Context) {
	reqs, err := h.svc.Estimates.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reqs})
}

func (h *Handler) getEstimate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	req, err := h.svc.Estimates.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": req})
}

func (h *Handler) updateEstimateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var body updateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	req, err := h.svc.Estimates.UpdateStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": req})
}
