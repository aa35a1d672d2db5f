package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"budget-assistant/internal/common/config"
	apperrors "budget-assistant/internal/common/errors"
	"budget-assistant/internal/common/logger"
)

func testConfig(baseURL string) config.GenAIConfig {
	return config.GenAIConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gemini-1.5-flash",
		Timeout: 2000,
	}
}

func completionResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]interface{}{
			{
				"index":   0,
				"message": map[string]interface{}{"role": "assistant", "content": content},
			},
		},
	}
}

func TestGenerate_ReturnsCompletionText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemini-1.5-flash", req["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionResponse("Você tem 2 orçamentos este mês."))
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), logger.NewTestLogger(t))
	out, err := client.Generate(context.Background(), "quantos orçamentos?")

	assert.NoError(t, err)
	assert.Equal(t, "Você tem 2 orçamentos este mês.", out)
}

func TestGenerate_EmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionResponse("   "))
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), logger.NewTestLogger(t))
	_, err := client.Generate(context.Background(), "oi")

	assert.Equal(t, apperrors.ErrCodeGenerationFailed, apperrors.Code(err))
}

func TestGenerate_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "bad request"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL), logger.NewTestLogger(t))
	_, err := client.Generate(context.Background(), "oi")

	assert.Equal(t, apperrors.ErrCodeGenerationFailed, apperrors.Code(err))
}

func TestGenerate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		json.NewEncoder(w).Encode(completionResponse("tarde demais"))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50

	client := New(cfg, logger.NewTestLogger(t))
	_, err := client.Generate(context.Background(), "oi")

	assert.Equal(t, apperrors.ErrCodeGenerationTimeout, apperrors.Code(err))
}
