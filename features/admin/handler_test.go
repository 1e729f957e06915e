package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResetter struct {
	called bool
	err    error
}

func (s *stubResetter) Reset(ctx context.Context) error {
	s.called = true
	return s.err
}

type stubRegistry struct {
	called bool
	err    error
}

func (s *stubRegistry) DeleteAll(ctx context.Context) error {
	s.called = true
	return s.err
}

func TestReset(t *testing.T) {
	store := &stubResetter{}
	registry := &stubRegistry{}
	handler := NewHandler(store, registry)

	req := httptest.NewRequest(http.MethodDelete, "/reset", nil)
	rec := httptest.NewRecorder()
	handler.Reset(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.called)
	assert.True(t, registry.called)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "Vector database reset successfully", resp["message"])
}

func TestReset_StoreFailure(t *testing.T) {
	store := &stubResetter{err: errors.New("reset denied")}
	registry := &stubRegistry{}
	handler := NewHandler(store, registry)

	req := httptest.NewRequest(http.MethodDelete, "/reset", nil)
	rec := httptest.NewRecorder()
	handler.Reset(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, registry.called)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["detail"], "reset denied")
}

func TestReset_RegistryFailure(t *testing.T) {
	handler := NewHandler(&stubResetter{}, &stubRegistry{err: errors.New("db locked")})

	req := httptest.NewRequest(http.MethodDelete, "/reset", nil)
	rec := httptest.NewRecorder()
	handler.Reset(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
