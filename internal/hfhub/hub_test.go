package hfhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa/internal/domain"
)

func TestCheckModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/models/org/open":
			_, _ = w.Write([]byte(`{"id":"org/open"}`))
		case "/api/models/org/gated":
			if r.Header.Get("Authorization") != "Bearer good" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"id":"org/gated"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		model   string
		token   string
		wantErr bool
	}{
		{"public model", "org/open", "", false},
		{"gated with token", "org/gated", "good", false},
		{"gated without token", "org/gated", "", true},
		{"unknown model", "org/missing", "good", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckModel(context.Background(), srv.Client(), srv.URL, tt.model, tt.token)
			if tt.wantErr {
				var mu *domain.ModelUnavailableError
				if !errors.As(err, &mu) || mu.Model != tt.model {
					t.Fatalf("expected ModelUnavailableError for %s, got %v", tt.model, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPostJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer srv.Close()

	var out any
	err := PostJSON(context.Background(), srv.Client(), srv.URL, "", map[string]string{}, &out)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 StatusError, got %v", err)
	}
	if !Retryable(err) {
		t.Fatalf("503 should be retryable")
	}
	if Retryable(&StatusError{StatusCode: http.StatusBadRequest}) {
		t.Fatalf("400 should not be retryable")
	}
}
