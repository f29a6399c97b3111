package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func claimsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/claims", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"claims": []string{}, "request_id": GetRequestID(c)})
	})
	return router
}

func TestRequestIDMiddleware(t *testing.T) {
	router := claimsRouter()

	req := httptest.NewRequest("GET", "/claims", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	responseID := w.Header().Get("X-Request-ID")
	if responseID == "" {
		t.Error("Expected X-Request-ID header to be set")
	}

	// The handler sees the same ID the client gets back
	var body struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.RequestID != responseID {
		t.Errorf("Expected handler request ID '%s', got '%s'", responseID, body.RequestID)
	}
}

func TestRequestIDMiddlewareWithExistingID(t *testing.T) {
	router := claimsRouter()

	existingID := "claims-client-42"
	req := httptest.NewRequest("GET", "/claims", nil)
	req.Header.Set("X-Request-ID", existingID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	responseID := w.Header().Get("X-Request-ID")
	if responseID != existingID {
		t.Errorf("Expected request ID '%s', got '%s'", existingID, responseID)
	}
}

func TestGetRequestIDEmpty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	requestID := GetRequestID(c)
	if requestID != "" {
		t.Errorf("Expected empty string, got '%s'", requestID)
	}
}
