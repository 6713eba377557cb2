package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, v any) *http.Response {
	b, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func newTestClient(t *testing.T, cfg Config, rt roundTripperFunc) Client {
	t.Helper()
	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	cfg.BaseURL = "http://upstream"
	c, err := NewClient(cfg, logger.NewNop(), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestEmbedReordersByIndexAndSendsMode(t *testing.T) {
	c := newTestClient(t, Config{EmbedModel: "embed-model", EmbedDimensions: 2, SendInputType: true}, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/embeddings" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("authorization=%q", got)
		}
		var in embeddingsRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			t.Fatalf("decode req: %v", err)
		}
		if in.InputType != "search_query" || in.Dimensions != 2 || in.Model != "embed-model" {
			t.Fatalf("unexpected request: %+v", in)
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"data": []map[string]any{
				{"embedding": []float64{0.3, 0.4}, "index": 1},
				{"embedding": []float64{0.1, 0.2}, "index": 0},
			},
		}), nil
	})

	vecs, err := c.Embed(context.Background(), []string{"a", "b"}, EmbedQuery)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 || vecs[0][0] != float32(0.1) || vecs[1][0] != float32(0.3) {
		t.Fatalf("unexpected vectors: %v", vecs)
	}
}

func TestEmbedNoVectorsIsUnavailable(t *testing.T) {
	c := newTestClient(t, Config{}, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{"data": []any{}}), nil
	})
	_, err := c.Embed(context.Background(), []string{"a"}, EmbedDocument)
	if !errors.Is(err, perrors.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestEmbedHTTPErrorIsNotRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, Config{}, func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusServiceUnavailable, map[string]any{"error": "busy"}), nil
	})
	_, err := c.Embed(context.Background(), []string{"a"}, EmbedDocument)
	if !errors.Is(err, perrors.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestConverseForcesToolAndParsesArguments(t *testing.T) {
	c := newTestClient(t, Config{Model: "chat-model"}, func(req *http.Request) (*http.Response, error) {
		var in map[string]any
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			t.Fatalf("decode req: %v", err)
		}
		if in["instructions"] != "persona\n\ncontext" {
			t.Fatalf("instructions=%q", in["instructions"])
		}
		choice, _ := in["tool_choice"].(map[string]any)
		if choice["type"] != "function" || choice["name"] != "plan_outline" {
			t.Fatalf("tool_choice=%v", in["tool_choice"])
		}
		input, _ := in["input"].([]any)
		if len(input) != 2 {
			t.Fatalf("input=%v", input)
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"output": []map[string]any{
				{"type": "function_call", "name": "plan_outline", "arguments": `{"title":"Go","ready_to_save":true}`},
			},
		}), nil
	})

	reply, err := c.Converse(context.Background(), ConverseRequest{
		Messages: []Message{{Role: RoleUser, Text: "hi"}, {Role: RoleAssistant, Text: "hello"}},
		System:   []string{"persona", " ", "context"},
		Tool:     &Tool{Name: "plan_outline", Parameters: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if !reply.Structured() || reply.ToolInput["title"] != "Go" || reply.ToolInput["ready_to_save"] != true {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestConverseMissingToolCallFails(t *testing.T) {
	c := newTestClient(t, Config{}, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{
			"output": []map[string]any{
				{"type": "message", "role": "assistant", "content": []map[string]any{{"type": "output_text", "text": "no tool"}}},
			},
		}), nil
	})
	_, err := c.Converse(context.Background(), ConverseRequest{
		Messages: []Message{{Role: RoleUser, Text: "hi"}},
		Tool:     &Tool{Name: "outline"},
	})
	if err == nil || !strings.Contains(err.Error(), "outline") {
		t.Fatalf("expected missing tool call error, got %v", err)
	}
}

func TestDescribeImageSendsDataURL(t *testing.T) {
	c := newTestClient(t, Config{VisionModel: "vision-model"}, func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		body := string(raw)
		if !strings.Contains(body, `"input_image"`) || !strings.Contains(body, "data:image/png;base64,AAAA") {
			t.Fatalf("image not sent: %s", body)
		}
		if !strings.Contains(body, `"vision-model"`) {
			t.Fatalf("vision model not used: %s", body)
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"output": []map[string]any{
				{"type": "message", "role": "assistant", "content": []map[string]any{{"type": "output_text", "text": "HELLO"}}},
			},
		}), nil
	})
	got, err := c.DescribeImage(context.Background(), "ocr", ImageInput{ImageURL: "data:image/png;base64,AAAA"})
	if err != nil {
		t.Fatalf("DescribeImage: %v", err)
	}
	if got != "HELLO" {
		t.Fatalf("got %q", got)
	}
}
