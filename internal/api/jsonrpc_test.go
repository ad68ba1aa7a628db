package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestEngine(handler *JSONRPCHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/", handler.Handle)
	return engine
}

func doRPC(t *testing.T, engine *gin.Engine, body string) JSONRPCResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp JSONRPCResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return resp
}

func TestJSONRPCHandler(t *testing.T) {
	handler := NewJSONRPCHandler()
	handler.RegisterMethod("echo", func(c *gin.Context, params json.RawMessage) (interface{}, error) {
		return gin.H{"params": string(params)}, nil
	})
	handler.RegisterMethod("fail", func(c *gin.Context, params json.RawMessage) (interface{}, error) {
		return nil, fmt.Errorf("boom")
	})
	handler.RegisterMethod("rejected", func(c *gin.Context, params json.RawMessage) (interface{}, error) {
		return nil, NewError(ErrInvalidParams, "Bad request", fmt.Errorf("offset out of range"))
	})
	engine := newTestEngine(handler)

	t.Run("successful call", func(t *testing.T) {
		resp := doRPC(t, engine, `{"jsonrpc":"2.0","id":1,"method":"echo","params":{"a":1}}`)
		if resp.Error != nil {
			t.Fatalf("Unexpected error: %+v", resp.Error)
		}
		if resp.Result == nil {
			t.Fatal("Expected result")
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		resp := doRPC(t, engine, `{"jsonrpc":"2.0","id":2,"method":"nope"}`)
		if resp.Error == nil || resp.Error.Code != ErrMethodNotFound {
			t.Fatalf("Expected method-not-found, got %+v", resp.Error)
		}
	})

	t.Run("wrong version", func(t *testing.T) {
		resp := doRPC(t, engine, `{"jsonrpc":"1.0","id":3,"method":"echo"}`)
		if resp.Error == nil || resp.Error.Code != ErrInvalidRequest {
			t.Fatalf("Expected invalid-request, got %+v", resp.Error)
		}
	})

	t.Run("untyped handler error", func(t *testing.T) {
		resp := doRPC(t, engine, `{"jsonrpc":"2.0","id":4,"method":"fail"}`)
		if resp.Error == nil || resp.Error.Code != ErrServerError {
			t.Fatalf("Expected server error, got %+v", resp.Error)
		}
	})

	t.Run("typed handler error keeps its code", func(t *testing.T) {
		resp := doRPC(t, engine, `{"jsonrpc":"2.0","id":5,"method":"rejected"}`)
		if resp.Error == nil || resp.Error.Code != ErrInvalidParams {
			t.Fatalf("Expected invalid-params, got %+v", resp.Error)
		}
	})
}
