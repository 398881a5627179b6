package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource is one independently-operated BTC price feed.
type PriceSource interface {
	Name() string
	Fetch(ctx context.Context) (price, change24h decimal.Decimal, err error)
}

func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// BinanceSource reads the 24h ticker from Binance.
type BinanceSource struct {
	client  *http.Client
	baseURL string
}

// NewBinanceSource creates a Binance price source with its own timeout.
func NewBinanceSource(timeout time.Duration) *BinanceSource {
	return &BinanceSource{
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://api.binance.com",
	}
}

// NewBinanceSourceWithURL is used by tests to point at a stub server.
func NewBinanceSourceWithURL(baseURL string, timeout time.Duration) *BinanceSource {
	s := NewBinanceSource(timeout)
	s.baseURL = baseURL

	return s
}

func (s *BinanceSource) Name() string { return "binance" }

func (s *BinanceSource) Fetch(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var body struct {
		LastPrice          string `json:"lastPrice"`
		PriceChangePercent string `json:"priceChangePercent"`
	}

	url := s.baseURL + "/api/v3/ticker/24hr?symbol=BTCUSDT"
	if err := fetchJSON(ctx, s.client, url, &body); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("binance: %w", err)
	}

	price, err := decimal.NewFromString(body.LastPrice)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("binance price: %w", err)
	}

	change, err := decimal.NewFromString(body.PriceChangePercent)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("binance change: %w", err)
	}

	return price, change, nil
}

// CoingeckoSource reads the simple price endpoint from CoinGecko.
type CoingeckoSource struct {
	client  *http.Client
	baseURL string
}

// NewCoingeckoSource creates a CoinGecko price source with its own timeout.
func NewCoingeckoSource(timeout time.Duration) *CoingeckoSource {
	return &CoingeckoSource{
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://api.coingecko.com",
	}
}

// NewCoingeckoSourceWithURL is used by tests to point at a stub server.
func NewCoingeckoSourceWithURL(baseURL string, timeout time.Duration) *CoingeckoSource {
	s := NewCoingeckoSource(timeout)
	s.baseURL = baseURL

	return s
}

func (s *CoingeckoSource) Name() string { return "coingecko" }

func (s *CoingeckoSource) Fetch(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var body struct {
		Bitcoin struct {
			USD          json.Number `json:"usd"`
			USD24hChange json.Number `json:"usd_24h_change"`
		} `json:"bitcoin"`
	}

	url := s.baseURL + "/api/v3/simple/price?ids=bitcoin&vs_currencies=usd&include_24hr_change=true"
	if err := fetchJSON(ctx, s.client, url, &body); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("coingecko: %w", err)
	}

	price, err := decimal.NewFromString(body.Bitcoin.USD.String())
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("coingecko price: %w", err)
	}

	change, err := decimal.NewFromString(body.Bitcoin.USD24hChange.String())
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("coingecko change: %w", err)
	}

	return price, change, nil
}

// KrakenSource reads the public Ticker endpoint from Kraken.
type KrakenSource struct {
	client  *http.Client
	baseURL string
}

// NewKrakenSource creates a Kraken price source with its own timeout.
func NewKrakenSource(timeout time.Duration) *KrakenSource {
	return &KrakenSource{
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://api.kraken.com",
	}
}

// NewKrakenSourceWithURL is used by tests to point at a stub server.
func NewKrakenSourceWithURL(baseURL string, timeout time.Duration) *KrakenSource {
	s := NewKrakenSource(timeout)
	s.baseURL = baseURL

	return s
}

func (s *KrakenSource) Name() string { return "kraken" }

func (s *KrakenSource) Fetch(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var body struct {
		Result map[string]struct {
			C []string `json:"c"` // last trade [price, lot volume]
			O string   `json:"o"` // today's opening price
		} `json:"result"`
	}

	url := s.baseURL + "/0/public/Ticker?pair=XBTUSDT"
	if err := fetchJSON(ctx, s.client, url, &body); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("kraken: %w", err)
	}

	for _, ticker := range body.Result {
		if len(ticker.C) == 0 {
			continue
		}

		price, err := decimal.NewFromString(ticker.C[0])
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("kraken price: %w", err)
		}

		open, err := decimal.NewFromString(ticker.O)
		if err != nil || open.IsZero() {
			return price, decimal.Zero, nil
		}

		hundred := decimal.NewFromInt(100)
		change := price.Sub(open).Div(open).Mul(hundred)

		return price, change, nil
	}

	return decimal.Zero, decimal.Zero, fmt.Errorf("kraken: empty ticker result")
}
