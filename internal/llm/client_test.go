package llm

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func fakeClient(t *testing.T, handler roundTrip) *Client {
	t.Helper()
	return &Client{
		BaseURL:    "https://api.test/v1/chat/completions",
		Model:      "test-model",
		HTTPClient: &http.Client{Transport: handler},
	}
}

func TestChatSuccess(t *testing.T) {
	client := fakeClient(t, func(req *http.Request) *http.Response {
		body, _ := io.ReadAll(req.Body)
		if !strings.Contains(string(body), "user prompt") {
			t.Fatalf("expected user prompt in payload, got %s", body)
		}
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`)),
			Header:     make(http.Header),
		}
	})

	out, err := client.Chat(context.Background(), "system", "user prompt")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "hi" {
		t.Fatalf("unexpected chat output %s", out)
	}
}

func TestChatAPIError(t *testing.T) {
	client := fakeClient(t, func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"bad"}}`)),
			Header:     make(http.Header),
		}
	})

	if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error")
	}
}

func TestChatEmptyResponse(t *testing.T) {
	client := fakeClient(t, func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"choices":[]}`)),
			Header:     make(http.Header),
		}
	})

	if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestChatRequiresConfig(t *testing.T) {
	client := &Client{}
	if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for missing base URL and model")
	}
}
