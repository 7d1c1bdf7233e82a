package diagnosis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDiagnoseNotConfigured(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.Diagnose(context.Background(), "yellowing leaves")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestDiagnose(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: "likely overwatering"}},
			},
		})
	}))
	defer api.Close()

	c := NewClient(Config{URL: api.URL, APIKey: "test-key", Model: "test-model"})
	answer, err := c.Diagnose(context.Background(), "yellowing leaves")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "likely overwatering" {
		t.Errorf("answer = %q", answer)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotReq.Model != "test-model" || len(gotReq.Messages) != 2 {
		t.Errorf("request = %+v", gotReq)
	}
	if gotReq.Messages[1].Content != "yellowing leaves" {
		t.Errorf("user message = %q", gotReq.Messages[1].Content)
	}
}

func TestDiagnoseUpstreamError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer api.Close()

	c := NewClient(Config{URL: api.URL, APIKey: "test-key", Model: "test-model"})
	if _, err := c.Diagnose(context.Background(), "wilting"); err == nil {
		t.Error("expected error on upstream failure")
	}
}
