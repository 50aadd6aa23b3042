package okx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstId(t *testing.T) {
	assert.Equal(t, "BTC-USDT-SWAP", toInstId("BTCUSDT"))
	assert.Equal(t, "BTC-USDT-SWAP", toInstId("btc-usdt-swap"))
	assert.Equal(t, "BTCUSDT", fromInstId("BTC-USDT-SWAP"))
	assert.Equal(t, "BTCUSDT", fromInstId("BTCUSDT"))
}

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSource(WithBaseURL(srv.URL), WithUserAgent("oi-screener-test"))
}

func TestSource_GetUSDTSymbols(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/public/instruments", r.URL.Path)
		assert.Equal(t, "SWAP", r.URL.Query().Get("instType"))
		assert.Equal(t, "oi-screener-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[
			{"instId":"BTC-USDT-SWAP","instType":"SWAP","settleCcy":"USDT","state":"live"},
			{"instId":"BTC-USD-SWAP","instType":"SWAP","settleCcy":"BTC","state":"live"},
			{"instId":"ETH-USDT-SWAP","instType":"SWAP","settleCcy":"USDT","state":"suspend"},
			{"instId":"SOL-USDT-SWAP","instType":"SWAP","settleCcy":"USDT","state":"live"}
		]}`))
	})

	symbols, err := src.GetUSDTSymbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT", "SOLUSDT"}, symbols)
}

func TestSource_GetOpenInterest(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/rubik/stat/contracts/open-interest-history", r.URL.Path)
		assert.Equal(t, "BTC-USDT-SWAP", r.URL.Query().Get("instId"))
		assert.Equal(t, "5m", r.URL.Query().Get("period"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[
			["1700000600000","120","1.2","50000"],
			["1700000300000","110","1.1","45000"],
			["1700000000000","100","1.0","40000"]
		]}`))
	})

	ois, err := src.GetOpenInterest(context.Background(), "BTCUSDT", exchange.Interval5m, 3)
	require.NoError(t, err)
	require.Len(t, ois, 3)
	assert.Equal(t, "OKX", ois[0].Exchange)
	assert.Equal(t, "BTCUSDT", ois[0].Symbol)
	assert.Equal(t, int64(1700000600000), ois[0].Timestamp)
	assert.Equal(t, 120.0, ois[0].Value)
	assert.Equal(t, 100.0, ois[2].Value)
}

func TestSource_GetOhlcv(t *testing.T) {
	start := time.UnixMilli(1700000000000)
	end := time.UnixMilli(1700000600000)
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/market/candles", r.URL.Path)
		assert.Equal(t, "15m", r.URL.Query().Get("bar"))
		assert.Equal(t, "1700000600001", r.URL.Query().Get("after"))
		assert.Equal(t, "1699999999999", r.URL.Query().Get("before"))
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[
			["1700000600000","1","2","0.5","1.5","300","0","0","1"],
			["1700000000000","1","2","0.5","1.0","200","0","0","1"]
		]}`))
	})

	kls, err := src.GetOhlcv(context.Background(), "BTCUSDT", exchange.Interval15m, start, end)
	require.NoError(t, err)
	require.Len(t, kls, 2)
	assert.Equal(t, exchange.Ohlcv{Timestamp: 1700000600000, Close: 1.5, Volume: 300}, kls[0])
	assert.Equal(t, exchange.Ohlcv{Timestamp: 1700000000000, Close: 1.0, Volume: 200}, kls[1])
}

func TestSource_Error(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: http.StatusOK, body: `{"code":"51001","msg":"Instrument ID does not exist","data":[]}`, wantErr: "51001"},
		{name: "http error", status: http.StatusTooManyRequests, body: `{"code":"50011","msg":"Too Many Requests"}`, wantErr: "status 429"},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantErr: "decode"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := src.GetOpenInterest(context.Background(), "BTCUSDT", exchange.Interval5m, 3)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConvertCandles_SkipShortRow(t *testing.T) {
	kls, err := convertCandles("BTCUSDT", [][]string{{"1", "2"}})
	require.NoError(t, err)
	assert.Empty(t, kls)
}
