package gigachat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStubServer поднимает httptest-сервер с OAuth и chat/completions.
// handleChat получает номер запроса (начиная с 1) и пишет ответ.
func newStubServer(t *testing.T, handleChat func(n int, w http.ResponseWriter, r *http.Request)) (*httptest.Server, *int, *int) {
	t.Helper()
	tokenCalls := 0
	chatCalls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth":
			tokenCalls++
			assert.Equal(t, "Basic test-credentials", r.Header.Get("Authorization"))
			assert.NotEmpty(t, r.Header.Get("RqUID"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "GIGACHAT_API_PERS", r.PostForm.Get("scope"))

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"access_token": "token-%d", "expires_at": %d}`,
				tokenCalls, time.Now().Add(30*time.Minute).UnixMilli())
		case "/chat/completions":
			chatCalls++
			handleChat(chatCalls, w, r)
		default:
			t.Errorf("неожиданный путь: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &tokenCalls, &chatCalls
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		Credentials: "test-credentials",
		AuthURL:     srv.URL + "/oauth",
		BaseURL:     srv.URL,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestClient_Chat(t *testing.T) {
	srv, tokenCalls, _ := newStubServer(t, func(n int, w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "GigaChat-Pro", req["model"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "Привет!"}}]}`)
	})

	client := newTestClient(t, srv)

	text, err := client.Chat(context.Background(), "скажи привет")
	require.NoError(t, err)
	assert.Equal(t, "Привет!", text)
	assert.Equal(t, 1, *tokenCalls)
}

func TestClient_Chat_ReusesToken(t *testing.T) {
	srv, tokenCalls, _ := newStubServer(t, func(n int, w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": [{"message": {"content": "ok"}}]}`)
	})

	client := newTestClient(t, srv)

	_, err := client.Chat(context.Background(), "раз")
	require.NoError(t, err)
	_, err = client.Chat(context.Background(), "два")
	require.NoError(t, err)

	assert.Equal(t, 1, *tokenCalls, "действующий токен переиспользуется")
}

func TestClient_Chat_RefreshesTokenOn401(t *testing.T) {
	srv, tokenCalls, chatCalls := newStubServer(t, func(n int, w http.ResponseWriter, r *http.Request) {
		if n == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices": [{"message": {"content": "после обновления"}}]}`)
	})

	client := newTestClient(t, srv)

	text, err := client.Chat(context.Background(), "промпт")
	require.NoError(t, err)
	assert.Equal(t, "после обновления", text)
	assert.Equal(t, 2, *tokenCalls, "после 401 токен берется заново")
	assert.Equal(t, 2, *chatCalls)
}

func TestClient_Chat_APIError(t *testing.T) {
	srv, _, _ := newStubServer(t, func(n int, w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message": "rate limited"}`)
	})

	client := newTestClient(t, srv)

	_, err := client.Chat(context.Background(), "промпт")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_ChatWithFunction_ObjectArguments(t *testing.T) {
	srv, _, _ := newStubServer(t, func(n int, w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotNil(t, req["functions"], "функции должны передаваться в запросе")
		assert.NotNil(t, req["function_call"])

		fmt.Fprint(w, `{"choices": [{"message": {"function_call": {"name": "grade_result", "arguments": {"ok": true, "feedback": "норм"}}}}]}`)
	})

	client := newTestClient(t, srv)

	raw, err := client.ChatWithFunction(context.Background(), "оцени", Function{Name: "grade_result"})
	require.NoError(t, err)

	var out struct {
		Ok       bool   `json:"ok"`
		Feedback string `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Ok)
	assert.Equal(t, "норм", out.Feedback)
}

func TestClient_ChatWithFunction_StringWrappedArguments(t *testing.T) {
	srv, _, _ := newStubServer(t, func(n int, w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": [{"message": {"function_call": {"name": "grade_result", "arguments": "{\"ok\": false, \"feedback\": \"мимо\"}"}}}]}`)
	})

	client := newTestClient(t, srv)

	raw, err := client.ChatWithFunction(context.Background(), "оцени", Function{Name: "grade_result"})
	require.NoError(t, err)

	var out struct {
		Ok bool `json:"ok"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.False(t, out.Ok)
}

func TestClient_ChatWithFunction_FallsBackToFencedContent(t *testing.T) {
	// Модель проигнорировала function_call и вернула JSON текстом в ограждении
	srv, _, _ := newStubServer(t, func(n int, w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": "```json\n{\"ok\": true, \"feedback\": \"текстом\"}\n```"}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	client := newTestClient(t, srv)

	raw, err := client.ChatWithFunction(context.Background(), "оцени", Function{Name: "grade_result"})
	require.NoError(t, err)

	var out struct {
		Feedback string `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "текстом", out.Feedback)
}

// ============================================================================
// Тесты для разбора толерантных форм ответа
// ============================================================================

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"строка", `"просто текст"`, "просто текст"},
		{"массив строк", `["раз", "два"]`, "раз\nдва"},
		{"массив объектов text", `[{"text": "раз"}, {"text": "два"}]`, "раз\nдва"},
		{"массив объектов content", `[{"content": "привет"}]`, "привет"},
		{"пусто", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractText(json.RawMessage(tt.raw)))
		})
	}
}

func TestCleanJSONContent(t *testing.T) {
	assert.Equal(t, `{"ok": true}`, cleanJSONContent("```json\n{\"ok\": true}\n```"))
	assert.Equal(t, `{"ok": true}`, cleanJSONContent("```\n{\"ok\": true}\n```"))
	assert.Equal(t, `{"ok": true}`, cleanJSONContent(`{"ok": true}`))
}
