package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jacob-mennell/fast-insurance-claims/service"
)

type AgentHandler struct {
	store      *service.ClaimStore
	scorer     service.FraudScorer
	dispatcher *service.AgentDispatcher
}

func NewAgentHandler(store *service.ClaimStore, scorer service.FraudScorer, dispatcher *service.AgentDispatcher) *AgentHandler {
	return &AgentHandler{
		store:      store,
		scorer:     scorer,
		dispatcher: dispatcher,
	}
}

// CheckFraud scores one claim. A missing claim is a 404, never a
// placeholder score.
func (h *AgentHandler) CheckFraud(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("claim_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Claim id must be an integer"})
		return
	}

	claim, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Claim not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch claim: " + err.Error()})
		return
	}

	result, err := h.scorer.Score(c.Request.Context(), claim)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to score claim: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"claim_id":          id,
		"claim_text":        service.ClaimText(claim),
		"labels":            result.Labels,
		"scores":            result.Scores,
		"predicted_label":   result.PredictedLabel,
		"fraud_probability": result.Probability,
	})
}

type AgentQueryRequest struct {
	Question string `json:"question" binding:"required"`
}

// Query handles natural language questions and maps them to tools
func (h *AgentHandler) Query(c *gin.Context) {
	var req AgentQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	response := h.dispatcher.Dispatch(c.Request.Context(), req.Question)

	c.JSON(http.StatusOK, gin.H{"response": response})
}
