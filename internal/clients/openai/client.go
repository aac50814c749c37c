package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/polyia/polyia-backend/internal/apierr"
	"github.com/polyia/polyia-backend/internal/logger"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		log:        log.With("client", "OpenAIClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Name() string  { return "openai" }
func (c *Client) Model() string { return c.cfg.Model }

type chatCompletionsRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends one chat-completions request and returns the generated
// text. Upstream failures are not retried.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", apierr.Unavailable("proveedor_no_configurado", fmt.Errorf("OPENAI_API_KEY no configurada"))
	}

	reqBody := chatCompletionsRequest{
		Model: c.cfg.Model,
		Messages: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("OpenAI request failed", "error", err)
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %v", err))
	}
	raw, readErr := io.ReadAll(httpResp.Body)
	_ = httpResp.Body.Close()
	if readErr != nil {
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %v", readErr))
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.log.Warn("OpenAI request returned non-2xx", "status", httpResp.StatusCode)
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %s", string(raw)))
	}

	var resp chatCompletionsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %v", err))
	}
	if len(resp.Choices) == 0 {
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: respuesta vacía"))
	}
	return resp.Choices[0].Message.Content, nil
}
