package executor

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"arbitrage/internal/security"
	"arbitrage/pkg/ratelimit"
	"arbitrage/pkg/retry"
)

const liveRecvWindow = "5000"

// HTTPDoer is satisfied by *http.Client; tests inject a stub instead of
// making a real HTTP round-trip.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// LiveExecutor places real market orders against a venue's REST API,
// signing every request the way the feed's sibling venue clients do
// (HMAC-SHA256 over timestamp+key+recvWindow+body) and pacing requests
// through a RateLimiter before a NetworkConfig retry loop.
type LiveExecutor struct {
	venue      string
	baseURL    string
	orderPath  string
	cred       security.Credential
	client     HTTPDoer
	limiter    *ratelimit.RateLimiter
	retryCfg   retry.Config
	feePercent float64
}

// NewLiveExecutor builds a LiveExecutor for venue, posting market orders to
// baseURL+orderPath, signed with cred, rate-limited at the given
// requests/sec and burst.
func NewLiveExecutor(venue, baseURL, orderPath string, cred security.Credential, client HTTPDoer, reqPerSec, burst, feePercent float64) *LiveExecutor {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &LiveExecutor{
		venue:      venue,
		baseURL:    baseURL,
		orderPath:  orderPath,
		cred:       cred,
		client:     client,
		limiter:    ratelimit.NewRateLimiter(reqPerSec, burst),
		retryCfg:   retry.NetworkConfig(),
		feePercent: feePercent,
	}
}

func (e *LiveExecutor) VenueName() string { return e.venue }

// sign mirrors the exchange clients' signature scheme: HMAC-SHA256 over
// timestamp + apiKey + recvWindow + body, hex-encoded.
func (e *LiveExecutor) sign(timestamp, body string) string {
	message := timestamp + e.cred.APIKey + liveRecvWindow + body
	h := hmac.New(sha256.New, []byte(e.cred.Secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

type liveOrderRequest struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Price    string `json:"price"`
	Qty      string `json:"qty"`
	OrderTyp string `json:"orderType"`
}

type liveOrderResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		FillPrice string `json:"fillPrice"`
		FillQty   string `json:"fillQty"`
	} `json:"result"`
}

// ExecuteTrade signs and places a market order for maxQty at the
// reference price, retrying transient HTTP failures under
// retry.NetworkConfig and waiting on the rate limiter before every
// attempt.
func (e *LiveExecutor) ExecuteTrade(symbol string, side Side, price, maxQty float64) (Fill, error) {
	ctx := context.Background()

	reqBody := liveOrderRequest{
		Symbol:   symbol,
		Side:     side.String(),
		Price:    strconv.FormatFloat(price, 'f', -1, 64),
		Qty:      strconv.FormatFloat(maxQty, 'f', -1, 64),
		OrderTyp: "Market",
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Fill{}, fmt.Errorf("live executor: encode order: %w", err)
	}

	var resp liveOrderResponse
	err = retry.Do(ctx, func() error {
		if err := e.limiter.Wait(ctx); err != nil {
			return retry.Permanent(err)
		}
		body, err := e.doRequest(ctx, payload)
		if err != nil {
			return err
		}
		if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
			return retry.Permanent(fmt.Errorf("live executor: decode response: %w", jsonErr))
		}
		if resp.RetCode != 0 {
			return retry.Permanent(fmt.Errorf("live executor: venue rejected order: %s", resp.RetMsg))
		}
		return nil
	}, e.retryCfg)

	if err != nil {
		return Fill{}, err
	}

	fillPrice, _ := strconv.ParseFloat(resp.Result.FillPrice, 64)
	fillQty, _ := strconv.ParseFloat(resp.Result.FillQty, 64)
	if fillPrice == 0 {
		fillPrice = price
	}
	if fillQty == 0 {
		fillQty = maxQty
	}

	notional := fillPrice * fillQty
	return Fill{
		Venue:     e.venue,
		Symbol:    symbol,
		Side:      side,
		Price:     fillPrice,
		Qty:       fillQty,
		Cost:      roundCents(notional),
		Fee:       notional * (e.feePercent / 100),
		Timestamp: nowMillis(),
		OK:        fillQty > 0 && fillPrice > 0,
	}, nil
}

func (e *LiveExecutor) doRequest(ctx context.Context, body []byte) ([]byte, error) {
	url := e.baseURL + e.orderPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(err)
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	signature := e.sign(timestamp, string(body))

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-ARB-API-KEY", e.cred.APIKey)
	req.Header.Set("X-ARB-SIGN", signature)
	req.Header.Set("X-ARB-TIMESTAMP", timestamp)
	req.Header.Set("X-ARB-RECV-WINDOW", liveRecvWindow)
	if e.cred.Passphrase != "" {
		req.Header.Set("X-ARB-PASSPHRASE", e.cred.Passphrase)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, retry.Temporary(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Temporary(err)
	}

	if resp.StatusCode >= 500 {
		return nil, retry.Temporary(fmt.Errorf("live executor: venue returned %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return nil, retry.Permanent(fmt.Errorf("live executor: venue returned %d", resp.StatusCode))
	}

	return respBody, nil
}
