package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"stark_bridge/internal/models"
	"stark_bridge/pkg/metrics"
	"stark_bridge/pkg/tracing"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const statusOK = "OK"

const (
	headerAPIKey        = "X-Api-Key"
	headerL1Signature   = "L1_SIGNATURE"
	headerL1MessageTime = "L1_MESSAGE_TIME"
	headerActiveAccount = "X-ACTIVE-ACCOUNT"
	userAgent           = "stark-bridge/1.0"
)

type Options struct {
	// APIBaseURL: .../api/v1 выбранного окружения
	APIBaseURL string
	// OnboardingURL: хост, на котором живёт /auth/onboard
	OnboardingURL string
	// MarketsBaseURL: откуда брать метаданные рынков, всегда mainnet
	MarketsBaseURL string

	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	// OnSuccess вызывается после каждого 2xx ответа (health: время последнего успешного вызова)
	OnSuccess func(time.Time)
}

// Client: REST клиент биржи. Ретраев нет, все вызовы проходят через общий лимитер.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter

	apiBase        string
	onboardingBase string
	marketsBase    string

	onSuccess func(time.Time)
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	limit := rate.Inf
	if opts.RateLimitRPS > 0 {
		limit = rate.Limit(opts.RateLimitRPS)
	}
	burst := opts.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		http:           &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(limit, burst),
		apiBase:        opts.APIBaseURL,
		onboardingBase: opts.OnboardingURL,
		marketsBase:    opts.MarketsBaseURL,
		onSuccess:      opts.OnSuccess,
	}
}

// WithEndpoint: тот же клиент (http, лимитер), но с другим окружением.
func (c *Client) WithEndpoint(apiBase, onboardingBase string) *Client {
	cp := *c
	cp.apiBase = apiBase
	cp.onboardingBase = onboardingBase
	return &cp
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type response struct {
	status int
	body   []byte
}

// do выполняет запрос. Заголовки кладутся как есть, без канонизации: биржа ждёт L1_SIGNATURE буквально.
func (c *Client) do(
	ctx context.Context,
	op, method, url string,
	headers map[string]string,
	body any,
) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(err, "%s: rate limit", op)
	}

	var rdr io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: marshal body", op)
		}
		rdr = bytes.NewReader(payload)
	}

	span, ctx := tracing.StartClientSpan(ctx, "extended."+op, method, url)
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		tracing.Finish(span, 0, err)
		return nil, errors.Wrapf(err, "%s: build request", op)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header[k] = []string{v}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream(op, "error", started)
		tracing.Finish(span, 0, err)
		return nil, errors.Wrapf(err, "%s: do request", op)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	metrics.ObserveUpstream(op, strconv.Itoa(resp.StatusCode), started)
	tracing.Finish(span, resp.StatusCode, err)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: read body", op)
	}
	if resp.StatusCode/100 == 2 && c.onSuccess != nil {
		c.onSuccess(time.Now())
	}
	return &response{status: resp.StatusCode, body: raw}, nil
}

// decodeOK: двойная проверка: сначала http статус, потом status в теле.
// Любой отказ биржи возвращается как *models.UpstreamError с исходным телом.
func decodeOK(op string, resp *response, out any) error {
	if resp.status/100 != 2 {
		return &models.UpstreamError{Op: op, Status: resp.status, Body: string(resp.body)}
	}

	var env envelope
	if err := sonic.Unmarshal(resp.body, &env); err != nil {
		return errors.Wrapf(err, "%s: decode envelope", op)
	}
	if env.Status != statusOK {
		status := resp.status
		if status/100 == 2 {
			// 200 с ошибкой в теле для вызывающего, всё равно отказ
			status = http.StatusBadRequest
		}
		return &models.UpstreamError{Op: op, Status: status, Body: string(resp.body)}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(env.Data, out); err != nil {
		return errors.Wrapf(err, "%s: decode data", op)
	}
	return nil
}
