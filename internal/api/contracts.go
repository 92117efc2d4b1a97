package api

import (
	"net/http"

	"estimate-service/internal/models"

	"github.com/gin-gonic/gin"
)

type signContractRequest struct {
	ContractID    int64  `json:"contract_id" binding:"required"`
	SignatureData string `json:"signature_data" binding:"required"`
}

func (h *Handler) createContract(c *gin.Context) {
	var contract models.Contract
	if err := c.ShouldBindJSON(&contract); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	if err := h.svc.Contracts.Create(c.Request.Context(), &contract); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": contract})
}

func (h *Handler) listContracts(c *gin.Context) {
	contracts, err := h.svc.Contracts.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": contracts})
}

func (h *Handler) getContract(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	contract, err := h.svc.Contracts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": contract})
}

func (h *Handler) signContract(c *gin.Context) {
	var req signContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "contract_id and signature_data are required", err)
		return
	}

	contract, err := h.svc.Contracts.Sign(c.Request.Context(), req.ContractID, req.SignatureData)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    contract,
		"message": "Contract signed",
	})
}

func (h *Handler) listContractVersions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	versions, err := h.svc.Versions.ListContractVersions(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": versions})
}
