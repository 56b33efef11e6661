package mixtral

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/resumeatlas/ResumeAPI/internal/analysis/llm"
)

func TestGenerate_ArrayResponse(t *testing.T) {
	var capturedBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			t.Errorf("missing bearer auth, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&capturedBody); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		w.Write([]byte(`[{"generated_text": "Strong candidate."}]`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL, server.Client())
	answer, err := client.Generate(context.Background(), "Analyze this", "Alice Smith\nEngineer", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if answer != "Strong candidate." {
		t.Errorf("answer = %q; want %q", answer, "Strong candidate.")
	}

	inputs, _ := capturedBody["inputs"].(string)
	if !strings.Contains(inputs, "[INST]") || !strings.Contains(inputs, "Context from resume:\nAlice Smith") {
		t.Errorf("prompt not wrapped in instruct template: %q", inputs)
	}

	params, _ := capturedBody["parameters"].(map[string]any)
	if params["return_full_text"] != false {
		t.Error("return_full_text should be false")
	}
	if params["max_new_tokens"] != float64(1024) {
		t.Errorf("max_new_tokens = %v; want 1024", params["max_new_tokens"])
	}
}

func TestGenerate_ObjectResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generated_text": "It is not a resume"}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL, server.Client())
	answer, err := client.Generate(context.Background(), "Analyze this", "grocery list", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if answer != "It is not a resume" {
		t.Errorf("answer = %q", answer)
	}
}

func TestGenerate_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "model overloaded"}`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL, server.Client())
	_, err := client.Generate(context.Background(), "Analyze this", "text", nil)
	if !errors.Is(err, llm.ErrRemoteService) {
		t.Errorf("expected ErrRemoteService, got %v", err)
	}
}

func TestGenerate_UndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := NewTestClient(server.URL, server.Client())
	_, err := client.Generate(context.Background(), "Analyze this", "text", nil)
	if !errors.Is(err, llm.ErrRemoteService) {
		t.Errorf("expected ErrRemoteService, got %v", err)
	}
}

func TestDecodeGeneratedText_EmptyArray(t *testing.T) {
	_, err := decodeGeneratedText([]byte(`[]`))
	if !errors.Is(err, llm.ErrRemoteService) {
		t.Errorf("expected ErrRemoteService for empty array, got %v", err)
	}
}

func TestGenerate_MissingGeneratedText(t *testing.T) {
	// well-formed 2xx bodies that lack the generated_text field
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"object with other fields", `{"error_text":"model overloaded"}`},
		{"array element without the field", `[{"foo":"bar"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewTestClient(server.URL, server.Client())
			answer, err := client.Generate(context.Background(), "Analyze this", "text", nil)
			if !errors.Is(err, llm.ErrRemoteService) {
				t.Errorf("expected ErrRemoteService for body %s, got %v", tt.body, err)
			}
			if answer != "" {
				t.Errorf("no answer should surface from body %s, got %q", tt.body, answer)
			}
		})
	}
}
