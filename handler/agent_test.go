package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jacob-mennell/fast-insurance-claims/model"
	"github.com/jacob-mennell/fast-insurance-claims/service"
)

func setupAgentRouter(t *testing.T) (*gin.Engine, *service.ClaimStore) {
	t.Helper()

	store, err := service.NewClaimStore(filepath.Join(t.TempDir(), "claims.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	scorer := &service.HeuristicScorer{}
	dispatcher := service.NewAgentDispatcher(store, scorer)
	h := NewAgentHandler(store, scorer, dispatcher)

	router := gin.New()
	router.GET("/agent/check_fraud/:claim_id", h.CheckFraud)
	router.POST("/agent/query", h.Query)
	return router, store
}

func seedClaim(t *testing.T, store *service.ClaimStore, number string, value float64) *model.Claim {
	t.Helper()

	amount := value
	claim, err := store.Create(context.Background(), &model.ClaimCreate{
		ClaimNumber:  number,
		ClaimantName: "Alice",
		Amount:       &amount,
	})
	if err != nil {
		t.Fatalf("Failed to seed claim: %v", err)
	}
	return claim
}

func TestCheckFraud(t *testing.T) {
	router, store := setupAgentRouter(t)
	claim := seedClaim(t, store, "F-1", 50000)

	req := httptest.NewRequest("GET", "/agent/check_fraud/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["claim_id"].(float64) != float64(claim.ID) {
		t.Errorf("Expected claim_id %d, got %v", claim.ID, response["claim_id"])
	}
	p, ok := response["fraud_probability"].(float64)
	if !ok {
		t.Fatal("Expected fraud_probability in response")
	}
	if p < 0 || p > 1 {
		t.Errorf("Probability %f out of [0,1]", p)
	}
	label, _ := response["predicted_label"].(string)
	if label != service.LabelSuspicious && label != service.LabelNotSuspicious {
		t.Errorf("Unexpected label '%s'", label)
	}
	if _, ok := response["claim_text"].(string); !ok {
		t.Error("Expected claim_text in response")
	}
}

func TestCheckFraudNotFound(t *testing.T) {
	router, _ := setupAgentRouter(t)

	// A missing claim must be a 404, never a placeholder score
	req := httptest.NewRequest("GET", "/agent/check_fraud/999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCheckFraudNonNumericID(t *testing.T) {
	router, _ := setupAgentRouter(t)

	req := httptest.NewRequest("GET", "/agent/check_fraud/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestAgentQuery(t *testing.T) {
	router, store := setupAgentRouter(t)
	seedClaim(t, store, "Q-1", 100)

	body := bytes.NewBufferString(`{"question":"What is the status of claim 1?"}`)
	req := httptest.NewRequest("POST", "/agent/query", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["response"] == "" {
		t.Error("Expected non-empty response text")
	}
}

func TestAgentQueryFallback(t *testing.T) {
	router, _ := setupAgentRouter(t)

	body := bytes.NewBufferString(`{"question":"How do I bake bread?"}`)
	req := httptest.NewRequest("POST", "/agent/query", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Unmappable questions are answered, not failed
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["response"] != service.FallbackMessage {
		t.Errorf("Expected fallback message, got '%s'", response["response"])
	}
}

func TestAgentQueryMissingQuestion(t *testing.T) {
	router, _ := setupAgentRouter(t)

	body := bytes.NewBufferString(`{}`)
	req := httptest.NewRequest("POST", "/agent/query", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}
