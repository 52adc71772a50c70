package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"BreakoutSentinel/internal/model"

	"golang.org/x/time/rate"
)

// DefaultBinanceURL is the USDT-M futures REST endpoint.
const DefaultBinanceURL = "https://fapi.binance.com"

// BinanceFetcher reads the futures universe and klines from the Binance REST API.
type BinanceFetcher struct {
	BaseURL    string
	QuoteAsset string
	Client     *http.Client
	limiter    *rate.Limiter
}

// NewBinanceFetcher creates a fetcher paced at rps requests per second with
// optional proxy support.
func NewBinanceFetcher(baseURL, quoteAsset string, rps float64, burst int, proxyURL string) *BinanceFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBinanceURL
	}
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &BinanceFetcher{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		QuoteAsset: quoteAsset,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (f *BinanceFetcher) Name() string { return "binance-futures" }

type exchangeInfo struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		Status     string `json:"status"`
		QuoteAsset string `json:"quoteAsset"`
	} `json:"symbols"`
}

// ListTradableSymbols returns symbols with status TRADING quoted in QuoteAsset.
func (f *BinanceFetcher) ListTradableSymbols(ctx context.Context) ([]string, error) {
	var info exchangeInfo
	if err := f.getJSON(ctx, "exchangeInfo", "", f.BaseURL+"/fapi/v1/exchangeInfo", &info); err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		if f.QuoteAsset != "" && !strings.HasSuffix(s.Symbol, f.QuoteAsset) {
			continue
		}
		symbols = append(symbols, s.Symbol)
	}
	return symbols, nil
}

// FetchRecentCandles returns the latest klines for symbol. Price and volume
// fields keep the exchange's decimal strings.
func (f *BinanceFetcher) FetchRecentCandles(ctx context.Context, symbol, interval string, limit int) ([]model.RawCandle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := f.BaseURL + "/fapi/v1/klines?" + q.Encode()

	var klines [][]any
	if err := f.getJSON(ctx, "klines", symbol, endpoint, &klines); err != nil {
		return nil, err
	}

	candles := make([]model.RawCandle, 0, len(klines))
	for i, k := range klines {
		if len(k) < 6 {
			return nil, &FetchError{Symbol: symbol, Op: "klines", Err: fmt.Errorf("kline %d: expected at least 6 fields, got %d", i, len(k))}
		}
		openMs, err := strconv.ParseInt(field(k[0]), 10, 64)
		if err != nil {
			return nil, &FetchError{Symbol: symbol, Op: "klines", Err: fmt.Errorf("kline %d: open time: %w", i, err)}
		}
		candles = append(candles, model.RawCandle{
			OpenTime: time.UnixMilli(openMs).UTC(),
			Open:     field(k[1]),
			High:     field(k[2]),
			Low:      field(k[3]),
			Close:    field(k[4]),
			Volume:   field(k[5]),
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].OpenTime.Before(candles[j].OpenTime) })
	return candles, nil
}

func (f *BinanceFetcher) getJSON(ctx context.Context, op, symbol, endpoint string, dst any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return &FetchError{Symbol: symbol, Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Symbol: symbol, Op: op, Err: err}
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return &FetchError{Symbol: symbol, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &FetchError{Symbol: symbol, Op: op, StatusCode: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return &FetchError{Symbol: symbol, Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// field renders a kline element as text; Binance sends numbers for times and
// strings for decimals.
func field(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
