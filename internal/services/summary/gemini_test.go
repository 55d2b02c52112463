package summary

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Part one. "},{"text":"Part two."}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	g := NewGeminiProvider("secret", "models/gemini-1.5-flash", srv.URL+"/")
	out, err := g.Generate(context.Background(), "Summarize this", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if out != "Part one. Part two." {
		t.Errorf("Generate() = %q", out)
	}
	if gotPath != "/v1beta/models/gemini-1.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("x-goog-api-key = %q, want secret", gotKey)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text != "Summarize this" {
		t.Errorf("request contents = %+v", gotReq.Contents)
	}
}

func TestGeminiGenerateErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantEmpty bool
		wantCode  int
	}{
		{"http error", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`, false, http.StatusTooManyRequests},
		{"blocked prompt", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, true, 0},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGeminiProvider("k", "gemini-1.5-flash", srv.URL).Generate(context.Background(), "p", "")
			if err == nil {
				t.Fatal("Generate() error = nil")
			}
			if tt.wantEmpty && !errors.Is(err, ErrEmptyResponse) {
				t.Errorf("error = %v, want ErrEmptyResponse", err)
			}
			if tt.wantCode != 0 {
				var se *StatusError
				if !errors.As(err, &se) || se.StatusCode != tt.wantCode {
					t.Errorf("error = %v, want StatusError %d", err, tt.wantCode)
				}
			}
		})
	}
}

func TestGeminiConfigured(t *testing.T) {
	if NewGeminiProvider("", "m", "http://x").Configured() {
		t.Error("Configured() = true without API key")
	}
	if !NewGeminiProvider("k", "m", "http://x").Configured() {
		t.Error("Configured() = false with API key")
	}
}
