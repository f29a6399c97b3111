package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jacob-mennell/fast-insurance-claims/model"
	"github.com/jacob-mennell/fast-insurance-claims/service"
)

type ClaimHandler struct {
	store       *service.ClaimStore
	claimLogger *service.ClaimLogger
}

func NewClaimHandler(store *service.ClaimStore, claimLogger *service.ClaimLogger) *ClaimHandler {
	return &ClaimHandler{
		store:       store,
		claimLogger: claimLogger,
	}
}

// Create handles claim creation
func (h *ClaimHandler) Create(c *gin.Context) {
	var req model.ClaimCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	claim, err := h.store.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateClaimNumber) {
			c.JSON(http.StatusConflict, gin.H{
				"detail": fmt.Sprintf("Claim number %s already exists", req.ClaimNumber),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create claim: " + err.Error()})
		return
	}

	// Best-effort side effect, detached from the request lifetime
	go h.claimLogger.LogCreation(context.Background(), claim)

	c.JSON(http.StatusCreated, claim)
}

// List returns all claims, optionally filtered by status. The /claims/async
// route is bound to this same handler: the two listings share one code path.
func (h *ClaimHandler) List(c *gin.Context) {
	status := c.Query("status")

	claims, err := h.store.List(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to list claims: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, claims)
}

// Get returns a single claim by numeric id or claim number
func (h *ClaimHandler) Get(c *gin.Context) {
	identifier := c.Param("identifier")

	claim, err := h.store.Resolve(c.Request.Context(), identifier)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"detail": fmt.Sprintf("Claim with id %s not found", identifier),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch claim: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, claim)
}

// Delete removes a claim by numeric id. A second delete of the same id
// returns 404: deletion is not idempotent.
func (h *ClaimHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Claim id must be an integer"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"detail": fmt.Sprintf("Claim with id %d not found", id),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to delete claim: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Claim deleted"})
}
