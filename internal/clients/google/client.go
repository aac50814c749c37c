package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
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
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		log:        log.With("client", "GoogleClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Name() string  { return "google" }
func (c *Client) Model() string { return c.cfg.Model }

type generateContentRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", apierr.Unavailable("proveedor_no_configurado", fmt.Errorf("GOOGLE_API_KEY no configurada"))
	}

	var reqBody generateContentRequest
	reqBody.Contents = []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	}{
		{Parts: []struct {
			Text string `json:"text"`
		}{{Text: prompt}}},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", err
	}
	// The Gemini API authenticates with the key as a query parameter.
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, url.QueryEscape(c.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("Google request failed", "error", err)
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %v", err))
	}
	raw, readErr := io.ReadAll(httpResp.Body)
	_ = httpResp.Body.Close()
	if readErr != nil {
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %v", readErr))
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.log.Warn("Google request returned non-2xx", "status", httpResp.StatusCode)
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %s", string(raw)))
	}

	var resp generateContentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: %v", err))
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", apierr.Upstream("error_proveedor_ia", fmt.Errorf("Error del proveedor de IA: respuesta vacía"))
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
