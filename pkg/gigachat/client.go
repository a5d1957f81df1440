package gigachat

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultAuthURL — эндпоинт выдачи OAuth-токена GigaChat
	DefaultAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	// DefaultBaseURL — базовый URL API GigaChat
	DefaultBaseURL = "https://gigachat.devices.sberbank.ru/api/v1"

	// tokenExpiryMargin — запас до истечения токена, после которого берем новый
	tokenExpiryMargin = 30 * time.Second
)

// Config содержит настройки клиента GigaChat
type Config struct {
	// Credentials — авторизационные данные (base64 client_id:client_secret) для Basic-авторизации OAuth.
	Credentials string
	// Scope — область действия токена (GIGACHAT_API_PERS и т.п.)
	Scope string
	// Model — имя модели (например, GigaChat-Pro)
	Model string
	// Temperature — температура генерации
	Temperature float64
	// VerifySSLCerts — проверять ли TLS-сертификаты (у GigaChat собственный CA, поэтому по умолчанию false)
	VerifySSLCerts bool
	// AuthURL/BaseURL — переопределения эндпоинтов (для тестов и прокси)
	AuthURL string
	BaseURL string
	// Timeout — таймаут одного HTTP-запроса
	Timeout time.Duration
}

// Client — клиент GigaChat API. Конструируется один раз и внедряется в сервисы
// явно, вместо чтения переменных окружения при каждом вызове.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// Message — одно сообщение диалога chat/completions
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Function описывает функцию для структурированного ответа модели
type Function struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type chatRequest struct {
	Model        string      `json:"model"`
	Messages     []Message   `json:"messages"`
	Temperature  float64     `json:"temperature"`
	Functions    []Function  `json:"functions,omitempty"`
	FunctionCall interface{} `json:"function_call,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role         string          `json:"role"`
			Content      json.RawMessage `json:"content"`
			FunctionCall *struct {
				Name      string          `json:"name"`
				Arguments json.RawMessage `json:"arguments"`
			} `json:"function_call,omitempty"`
		} `json:"message"`
	} `json:"choices"`
}

type oauthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // unix millis
}

// NewClient создает новый клиент GigaChat
func NewClient(cfg Config) (*Client, error) {
	if cfg.Credentials == "" {
		return nil, fmt.Errorf("gigachat credentials are required")
	}
	if cfg.Scope == "" {
		cfg.Scope = "GIGACHAT_API_PERS"
	}
	if cfg.Model == "" {
		cfg.Model = "GigaChat-Pro"
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	transport := &http.Transport{}
	if !cfg.VerifySSLCerts {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}, nil
}

// Chat отправляет промпт и возвращает текст ответа модели
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	resp, err := c.completion(ctx, chatRequest{
		Model:       c.cfg.Model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("gigachat: empty response")
	}
	return extractText(resp.Choices[0].Message.Content), nil
}

// ChatWithFunction отправляет промпт с принудительным вызовом функции и
// возвращает аргументы вызова (JSON-объект) для дальнейшего анмаршалинга.
func (c *Client) ChatWithFunction(ctx context.Context, prompt string, fn Function) (json.RawMessage, error) {
	resp, err := c.completion(ctx, chatRequest{
		Model:        c.cfg.Model,
		Messages:     []Message{{Role: "user", Content: prompt}},
		Temperature:  c.cfg.Temperature,
		Functions:    []Function{fn},
		FunctionCall: map[string]string{"name": fn.Name},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("gigachat: empty response")
	}

	msg := resp.Choices[0].Message
	if msg.FunctionCall != nil && len(msg.FunctionCall.Arguments) > 0 {
		return normalizeArguments(msg.FunctionCall.Arguments), nil
	}

	// Модель могла проигнорировать function_call и вернуть JSON текстом
	if txt := extractText(msg.Content); txt != "" {
		return json.RawMessage(cleanJSONContent(txt)), nil
	}

	return nil, fmt.Errorf("gigachat: response contains no function call arguments")
}

// completion выполняет запрос chat/completions с одним повтором при протухшем токене
func (c *Client) completion(ctx context.Context, req chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gigachat: failed to marshal request: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.token(ctx, attempt > 0)
		if err != nil {
			return nil, err
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gigachat: failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("gigachat: request failed: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("gigachat: failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			// Токен протух раньше заявленного expires_at — берем новый и повторяем
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("gigachat: API returned status %d: %s", resp.StatusCode, truncateForError(respBody))
		}

		var chatResp chatResponse
		if err := json.Unmarshal(respBody, &chatResp); err != nil {
			return nil, fmt.Errorf("gigachat: failed to parse response: %w", err)
		}
		return &chatResp, nil
	}

	return nil, fmt.Errorf("gigachat: unauthorized after token refresh")
}

// token возвращает действующий access token, при необходимости запрашивая новый
func (c *Client) token(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.accessToken != "" && time.Now().Add(tokenExpiryMargin).Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("scope", c.cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("gigachat: failed to create oauth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+c.cfg.Credentials)
	req.Header.Set("RqUID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gigachat: oauth request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gigachat: failed to read oauth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gigachat: oauth returned status %d: %s", resp.StatusCode, truncateForError(body))
	}

	var oauth oauthResponse
	if err := json.Unmarshal(body, &oauth); err != nil {
		return "", fmt.Errorf("gigachat: failed to parse oauth response: %w", err)
	}
	if oauth.AccessToken == "" {
		return "", fmt.Errorf("gigachat: oauth response contains no access token")
	}

	c.accessToken = oauth.AccessToken
	c.expiresAt = time.UnixMilli(oauth.ExpiresAt)
	return c.accessToken, nil
}

// extractText достает текст из поля content, толерантно к форме ответа:
// строка, массив строк или массив объектов с полями text/content.
func extractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			var part string
			if err := json.Unmarshal(item, &part); err == nil {
				if strings.TrimSpace(part) != "" {
					parts = append(parts, part)
				}
				continue
			}
			var obj struct {
				Text    string `json:"text"`
				Content string `json:"content"`
			}
			if err := json.Unmarshal(item, &obj); err == nil {
				if obj.Text != "" {
					parts = append(parts, obj.Text)
				} else if obj.Content != "" {
					parts = append(parts, obj.Content)
				}
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	}

	return strings.TrimSpace(string(raw))
}

// normalizeArguments приводит arguments к JSON-объекту: некоторые версии API
// возвращают объект, некоторые — строку с сериализованным объектом внутри.
func normalizeArguments(raw json.RawMessage) json.RawMessage {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return json.RawMessage(cleanJSONContent(s))
	}
	return raw
}

// cleanJSONContent убирает markdown-ограждения вокруг JSON, если модель их добавила
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	}
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	if strings.HasSuffix(content, "```") {
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}

func truncateForError(body []byte) string {
	const max = 256
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
