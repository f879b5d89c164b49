package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultSourceTimeout = 15 * time.Second
	// UserAgent identifies requests made by the page and JSON sources.
	UserAgent = "TriviaQOTD/1.0 (compatible; dashboard)"
)

// SourceConfig describes how to reach the remote trivia collaborator.
type SourceConfig struct {
	URL        string
	Token      string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

func (c SourceConfig) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (c SourceConfig) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return UserAgent
}

// PageSource scrapes the question of the day from an HTML page.
type PageSource struct {
	cfg    SourceConfig
	client *http.Client
}

// NewPageSource requires a URL; the token is ignored.
func NewPageSource(cfg SourceConfig) (*PageSource, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("%w: page url is required", ErrConfigurationMissing)
	}
	return &PageSource{cfg: cfg, client: cfg.client()}, nil
}

func (s *PageSource) Fetch(ctx context.Context) (Item, error) {
	resp, err := get(ctx, s.client, s.cfg.URL, s.cfg.userAgent(), "")
	if err != nil {
		return Item{}, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Item{}, fmt.Errorf("%w: parse page: %v", ErrMalformedResponse, err)
	}
	return ExtractFromText(doc.Find("body").Text())
}

// JSONSource reads a {question, answer, category} document from an
// authenticated endpoint.
type JSONSource struct {
	cfg    SourceConfig
	client *http.Client
}

// NewJSONSource requires both a URL and an access token.
func NewJSONSource(cfg SourceConfig) (*JSONSource, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("%w: json url is required", ErrConfigurationMissing)
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("%w: json source token is required", ErrConfigurationMissing)
	}
	return &JSONSource{cfg: cfg, client: cfg.client()}, nil
}

func (s *JSONSource) Fetch(ctx context.Context) (Item, error) {
	resp, err := get(ctx, s.client, s.cfg.URL, s.cfg.userAgent(), s.cfg.Token)
	if err != nil {
		return Item{}, err
	}
	defer resp.Body.Close()

	var payload Item
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Item{}, fmt.Errorf("%w: decode json: %v", ErrMalformedResponse, err)
	}
	item := Item{
		Question: normalizeWhitespace(payload.Question),
		Answer:   shortenAnswer(normalizeWhitespace(payload.Answer)),
		Category: normalizeWhitespace(payload.Category),
	}
	if item.Question == "" || item.Answer == "" {
		return Item{}, fmt.Errorf("%w: empty question or answer", ErrMalformedResponse)
	}
	return item, nil
}

func get(ctx context.Context, client *http.Client, url, userAgent, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrRemoteUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s (%s)", ErrRemoteUnavailable, resp.Status, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// Source kinds accepted by NewSource.
const (
	KindPage = "page"
	KindJSON = "json"
)

// NewSource builds the adapter for kind. An empty kind means KindPage.
func NewSource(kind string, cfg SourceConfig) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindPage:
		src, err := NewPageSource(cfg)
		if err != nil {
			return nil, err
		}
		return src, nil
	case KindJSON:
		src, err := NewJSONSource(cfg)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown trivia source kind %q", kind)
	}
}
