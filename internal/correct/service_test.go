package correct

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPCorrector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/correct" {
			t.Errorf("path = %q, want /correct", r.URL.Path)
		}
		var req correctRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.MaxLength != 256 {
			t.Errorf("max_length = %d, want 256", req.MaxLength)
		}
		json.NewEncoder(w).Encode(correctResponse{CorrectedText: "sữa tươi không đường"})
	}))
	defer srv.Close()

	corrected, err := NewHTTPCorrector(srv.URL).Correct(context.Background(), "sua tuoi khong duong", 256)
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if corrected != "sữa tươi không đường" {
		t.Errorf("corrected = %q", corrected)
	}
}

func TestHTTPCorrectorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPCorrector(srv.URL).Correct(context.Background(), "x", DefaultMaxLength)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestPassthrough(t *testing.T) {
	got, err := Passthrough{}.Correct(context.Background(), "nguyên văn", DefaultMaxLength)
	if err != nil || got != "nguyên văn" {
		t.Errorf("Passthrough = %q, %v", got, err)
	}
}
