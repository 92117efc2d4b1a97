package api

import (
	"fmt"
	"net/http"
	"strconv"

	"estimate-service/internal/models"

	"github.com/gin-gonic/gin"
)

type promoteRequest struct {
	ItemIDs []int64 `json:"itemIds"`
}

type verifyRequest struct {
	ID       int64 `json:"id" binding:"required"`
	Verified *bool `json:"verified" binding:"required"`
}

func (h *Handler) listExtractedItems(c *gin.Context) {
	var verified *bool
	if raw := c.Query("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "Invalid verified filter", err)
			return
		}
		verified = &v
	}

	items, err := h.svc.Pricing.ListExtractedItems(c.Request.Context(), verified)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

func (h *Handler) createExtractedItem(c *gin.Context) {
	var item models.ExtractedItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	if err := h.svc.Pricing.CreateExtractedItem(c.Request.Context(), &item); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": item})
}

func (h *Handler) updateExtractedItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var item models.ExtractedItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	item.ID = id

	updated, err := h.svc.Pricing.UpdateExtractedItem(c.Request.Context(), &item)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

func (h *Handler) promoteItems(c *gin.Context) {
	var req promoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	result, err := h.svc.Pricing.Promote(c.Request.Context(), req.ItemIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"updated":  result.Updated,
		"outcomes": result.Outcomes,
		"message":  fmt.Sprintf("%d of %d items added to the standard price catalog", result.Updated, len(req.ItemIDs)),
	})
}

func (h *Handler) verifyItem(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	result, err := h.svc.Pricing.SetVerified(c.Request.Context(), req.ID, *req.Verified)
	if err != nil {
		h.respondError(c, err)
		return
	}

	body := gin.H{
		"success": true,
		"message": "Verification cleared",
	}
	if result.Verified {
		body["addedToStandard"] = result.AddedToStandard
		body["outcome"] = result.Outcome
		if result.AddedToStandard {
			body["message"] = "Verified and added to the standard price catalog"
		} else {
			body["message"] = "Verified; the item could not be added to the standard price catalog"
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) listStandardPrices(c *gin.Context) {
	catalog, err := h.svc.Catalog.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": catalog})
}
