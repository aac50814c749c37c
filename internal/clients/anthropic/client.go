package anthropic

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

const anthropicVersion = "2023-06-01"

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
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-haiku-20240307"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		log:        log.With("client", "AnthropicClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Name() string  { return "anthropic" }
func (c *Client) Model() string { return c.cfg.Model }

type messagesRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", apierr.Unavailable("proveedor_no_configurado", fmt.Errorf("ANTHROPIC_API_KEY no configurada"))
	}

	reqBody := messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: 2048,
		Messages: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "user", Content: prompt},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/messages", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("Anthropic request failed", "error", err)
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %v", err))
	}
	raw, readErr := io.ReadAll(httpResp.Body)
	_ = httpResp.Body.Close()
	if readErr != nil {
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %v", readErr))
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.log.Warn("Anthropic request returned non-2xx", "status", httpResp.StatusCode)
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %s", string(raw)))
	}

	var resp messagesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %v", err))
	}
	if len(resp.Content) == 0 {
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: respuesta vacía"))
	}
	return resp.Content[0].Text, nil
}
