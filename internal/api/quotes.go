package api

import (
	"fmt"
	"net/http"
	"strconv"

	"estimate-service/internal/models"

	"github.com/gin-gonic/gin"
)

type saveVersionRequest struct {
	QuoteID int64  `json:"quote_id" binding:"required"`
	Reason  string `json:"reason"`
}

func (h *Handler) createQuote(c *gin.Context) {
	var quote models.Quote
	if err := c.ShouldBindJSON(&quote); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	created, err := h.svc.Quotes.Create(c.Request.Context(), &quote)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": created})
}

func (h *Handler) listQuotes(c *gin.Context) {
	quotes, err := h.svc.Quotes.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": quotes})
}

func (h *Handler) getQuote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	quote, err := h.svc.Quotes.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": quote})
}

func (h *Handler) listQuoteVersions(c *gin.Context) {
	quoteID, err := strconv.ParseInt(c.Query("quote_id"), 10, 64)
	if err != nil {
		badRequest(c, "quote_id is required", err)
		return
	}

	versions, err := h.svc.Versions.ListQuoteVersions(c.Request.Context(), quoteID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": versions})
}

func (h *Handler) saveQuoteVersion(c *gin.Context) {
	var req saveVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	snapshot, err := h.svc.Versions.SnapshotQuote(c.Request.Context(), req.QuoteID, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	body := gin.H{
		"success":      true,
		"data":         snapshot.Version,
		"items_copied": snapshot.ItemsCopied,
		"message":      fmt.Sprintf("Version %d saved", snapshot.Version.VersionNumber),
	}
	if snapshot.Warning != "" {
		body["warning"] = snapshot.Warning
	}
	c.JSON(http.StatusCreated, body)
}

func (h *Handler) getQuoteVersion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	version, err := h.svc.Versions.GetQuoteVersion(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": version})
}
