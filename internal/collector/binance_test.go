package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBinanceServer(t *testing.T, handler http.HandlerFunc) *BinanceFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBinanceFetcher(srv.URL, "USDT", 0, 1, "")
}

func TestBinance_ListTradableSymbols(t *testing.T) {
	f := newBinanceServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/exchangeInfo", r.URL.Path)
		w.Write([]byte(`{"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING","quoteAsset":"USDT"},
			{"symbol":"ETHUSDT","status":"TRADING","quoteAsset":"USDT"},
			{"symbol":"OLDUSDT","status":"SETTLING","quoteAsset":"USDT"},
			{"symbol":"ETHBTC","status":"TRADING","quoteAsset":"BTC"},
			{"symbol":"BTCUSDC","status":"TRADING","quoteAsset":"USDC"}
		]}`))
	})

	symbols, err := f.ListTradableSymbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, symbols)
}

func TestBinance_FetchRecentCandles(t *testing.T) {
	f := newBinanceServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "4h", r.URL.Query().Get("interval"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		// deliberately out of order
		w.Write([]byte(`[
			[1735704000000,"101.0","102.5","100.5","102.0","1500.25",1735718399999,"0",10,"0","0","0"],
			[1735689600000,"100.0","101.5","99.5","101.0","1200.5",1735703999999,"0",12,"0","0","0"]
		]`))
	})

	candles, err := f.FetchRecentCandles(context.Background(), "BTCUSDT", "4h", 50)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.True(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Equal(candles[0].OpenTime))
	assert.Equal(t, "101.0", candles[0].Close)
	assert.Equal(t, "1200.5", candles[0].Volume)
	assert.Equal(t, "102.5", candles[1].High)
	assert.Equal(t, "100.5", candles[1].Low)
}

func TestBinance_StatusError(t *testing.T) {
	f := newBinanceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":-1003,"msg":"Too many requests"}`))
	})

	_, err := f.FetchRecentCandles(context.Background(), "BTCUSDT", "4h", 50)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "BTCUSDT", fe.Symbol)
	assert.Equal(t, http.StatusTooManyRequests, fe.StatusCode)
	assert.Contains(t, err.Error(), "Too many requests")
}

func TestBinance_MalformedKline(t *testing.T) {
	f := newBinanceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1735689600000,"100.0","101.5"]]`))
	})

	_, err := f.FetchRecentCandles(context.Background(), "BTCUSDT", "4h", 50)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "klines", fe.Op)
}

func TestBinance_BadJSON(t *testing.T) {
	f := newBinanceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := f.ListTradableSymbols(context.Background())
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "exchangeInfo", fe.Op)
	assert.Empty(t, fe.Symbol)
}

func TestBinance_CancelledContext(t *testing.T) {
	f := newBinanceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FetchRecentCandles(ctx, "BTCUSDT", "4h", 50)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, context.Canceled)
}
