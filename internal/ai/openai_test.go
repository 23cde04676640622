package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func completionBody(t *testing.T, contents ...string) []byte {
	t.Helper()
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type choice struct {
		Index        int     `json:"index"`
		FinishReason string  `json:"finish_reason"`
		Message      message `json:"message"`
	}
	choices := []choice{}
	for i, c := range contents {
		choices = append(choices, choice{Index: i, FinishReason: "stop", Message: message{Role: "assistant", Content: c}})
	}
	body, err := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1704844800,
		"model":   "test-model",
		"choices": choices,
	})
	require.NoError(t, err)
	return body
}

func TestOpenAICompatRespond(t *testing.T) {
	reply := `Here you go: {"message":"Mám ji uložit?","type":"event_creation",` +
		`"eventData":{"title":"Oběd","date":"2024-01-11","time":"12:30","endTime":null,"description":"oběd zítra"}}`

	var got chatRequest
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody(t, reply))
	}))
	defer srv.Close()

	p := NewOpenAICompat(srv.URL, "hf_test", "test-model", nil)
	resp, err := p.Respond(context.Background(), Request{
		Text: "oběd zítra ve 12:30",
		History: []Message{
			{Role: "user", Content: "ahoj"},
			{Role: "assistant", Content: "Ahoj!"},
			{Role: "system", Content: "ignored role"},
		},
		Today: fixedNow(),
	})
	require.NoError(t, err)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer hf_test", gotAuth)
	assert.Equal(t, "test-model", got.Model)

	roles := make([]string, len(got.Messages))
	for i, m := range got.Messages {
		roles[i] = m.Role
	}
	// Unknown history roles are sent as user turns.
	assert.Equal(t, []string{"system", "user", "assistant", "user", "user"}, roles)

	var last string
	require.NoError(t, json.Unmarshal(got.Messages[len(got.Messages)-1].Content, &last))
	assert.Equal(t, "oběd zítra ve 12:30", last)

	assert.Equal(t, assistant.IntentEventCreation, resp.Type)
	require.NotNil(t, resp.EventData)
	assert.Equal(t, assistant.EventDraft{Title: "Oběd", Date: "2024-01-11", Time: "12:30", Description: "oběd zítra"}, *resp.EventData)
}

func TestOpenAICompatRespondErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    func(t *testing.T) []byte
		wantErr string
	}{
		{
			name:    "no choices",
			body:    func(t *testing.T) []byte { return completionBody(t) },
			wantErr: "no choices",
		},
		{
			name:    "not JSON",
			body:    func(t *testing.T) []byte { return completionBody(t, "Nevím.") },
			wantErr: "no JSON object",
		},
		{
			name:    "unknown type",
			body:    func(t *testing.T) []byte { return completionBody(t, `{"message":"x","type":"weather"}`) },
			wantErr: "unknown response type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write(tt.body(t))
			}))
			defer srv.Close()

			p := NewOpenAICompat(srv.URL, "hf_test", "test-model", nil)
			_, err := p.Respond(context.Background(), Request{Text: "ahoj", Today: fixedNow()})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
