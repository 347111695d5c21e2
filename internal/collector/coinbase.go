package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// DefaultCoinbaseBaseURL is the public Coinbase API host.
const DefaultCoinbaseBaseURL = "https://api.coinbase.com"

const coinbaseAmountPath = "$.data.amount"

// CoinbaseFetcher fetches fiat-quoted crypto spot prices from the Coinbase v2 API.
type CoinbaseFetcher struct {
	Client  *http.Client
	BaseURL string
}

// NewCoinbaseFetcher creates a new fetcher with optional proxy support.
func NewCoinbaseFetcher(baseURL, proxyURL string, timeout time.Duration) *CoinbaseFetcher {
	if baseURL == "" {
		baseURL = DefaultCoinbaseBaseURL
	}
	return &CoinbaseFetcher{
		Client:  newHTTPClient(proxyURL, timeout),
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (f *CoinbaseFetcher) Name() string { return "coinbase" }

// FetchCurrentPrice returns the spot price of a pair such as BTC-USD.
func (f *CoinbaseFetcher) FetchCurrentPrice(ctx context.Context, pair string) (float64, error) {
	u := fmt.Sprintf("%s/v2/prices/%s/spot", f.BaseURL, url.PathEscape(pair))

	var body any
	if err := getJSON(ctx, f.Client, u, &body); err != nil {
		return 0, fmt.Errorf("coinbase spot %s: %w", pair, err)
	}
	v, err := jsonpath.Get(coinbaseAmountPath, body)
	if err != nil {
		return 0, fmt.Errorf("%w: coinbase spot %s: %q: %w", ErrFetch, pair, coinbaseAmountPath, err)
	}
	// jsonpath may wrap a single answer in a list
	if list, ok := v.([]any); ok && len(list) > 0 {
		v = list[0]
	}

	switch amount := v.(type) {
	case string:
		price, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: coinbase spot %s: bad amount %q", ErrFetch, pair, amount)
		}
		return checkPrice("coinbase", pair, price)
	case float64:
		return checkPrice("coinbase", pair, amount)
	default:
		return 0, fmt.Errorf("%w: coinbase spot %s: amount is %T", ErrFetch, pair, v)
	}
}
