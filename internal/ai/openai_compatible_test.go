package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteParsesToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req["model"])
		assert.Equal(t, "auto", req["tool_choice"])
		assert.NotEmpty(t, req["tools"])

		_, _ = w.Write([]byte(`{
			"choices": [{
				"message": {
					"role": "assistant",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "total_leave_taken", "arguments": "{\"leave_code\":\"SL\"}"}
					}]
				}
			}]
		}`))
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient()
	cfg := ChatConfig{BaseURL: server.URL, APIKey: "sk-test", Model: "gpt-4o"}
	tools := []ToolDefinition{{Type: "function", Function: FunctionSchema{Name: "total_leave_taken"}}}

	msg, err := client.Complete(context.Background(), cfg,
		[]ChatMessage{{Role: RoleUser, Content: "total?"}}, tools, "auto")
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, msg.Role)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
	assert.Equal(t, "total_leave_taken", msg.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"leave_code":"SL"}`, msg.ToolCalls[0].Function.Arguments)
}

func TestCompleteDefaultsRole(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "hi"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient()
	msg, err := client.Complete(context.Background(), ChatConfig{BaseURL: server.URL}, nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "hi", msg.Content)
}

func TestCompleteAuthenticationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient()
	_, err := client.Complete(context.Background(), ChatConfig{BaseURL: server.URL}, nil, nil, "")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient()
	_, err := client.Complete(context.Background(), ChatConfig{BaseURL: server.URL}, nil, nil, "")
	assert.Error(t, err)
}

func TestStreamComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(
			"data: {\"choices\":[{\"delta\":{\"content\":\"You have \"}}]}\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"2 days.\"}}]}\n\n" +
				": keep-alive comment\n\n" +
				"data: [DONE]\n\n"))
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient()
	var chunks []string
	full, err := client.StreamComplete(context.Background(), ChatConfig{BaseURL: server.URL}, nil, nil,
		func(chunk string) error {
			chunks = append(chunks, chunk)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, "You have 2 days.", full)
	assert.Equal(t, []string{"You have ", "2 days."}, chunks)
}

func TestStreamCompleteAuthenticationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient()
	_, err := client.StreamComplete(context.Background(), ChatConfig{BaseURL: server.URL}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-large", req["model"])
		assert.Equal(t, "sick leave", req["input"])
		_, _ = w.Write([]byte(`{"data": [{"embedding": [0.1, 0.2, 0.3]}]}`))
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient()
	vec, err := client.Embed(context.Background(),
		EmbeddingConfig{BaseURL: server.URL, Model: "text-embedding-3-large"}, " sick leave ")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedEmptyInput(t *testing.T) {
	client := NewOpenAICompatibleClient()
	_, err := client.Embed(context.Background(), EmbeddingConfig{}, "   ")
	assert.Error(t, err)
}

func TestChatMessageWireShape(t *testing.T) {
	toolMsg := ChatMessage{
		Role:       RoleTool,
		Content:    "2",
		ToolCallID: "call_1",
		Name:       "total_leave_taken",
	}
	raw, err := json.Marshal(toolMsg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"tool","content":"2","tool_call_id":"call_1","name":"total_leave_taken"}`, string(raw))

	plain := ChatMessage{Role: RoleUser, Content: "hi"}
	raw, err = json.Marshal(plain)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(raw), "empty tool fields are omitted")
}
