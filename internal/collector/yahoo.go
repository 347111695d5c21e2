package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"PortfolioTracker/internal/model"
)

// DefaultYahooBaseURL is the public Yahoo Finance API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements PriceSource using Yahoo Finance public APIs:
// v7 quote for spot prices and ratios, v8 chart for daily closes.
type YahooFetcher struct {
	Client  *http.Client
	BaseURL string
	Now     func() time.Time
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL, proxyURL string, timeout time.Duration) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooFetcher{
		Client:  newHTTPClient(proxyURL, timeout),
		BaseURL: strings.TrimRight(baseURL, "/"),
		Now:     time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooQuote is the response structure from the v7 quote API.
type yahooQuote struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string   `json:"symbol"`
			RegularMarketPrice *float64 `json:"regularMarketPrice"`
			TrailingPE         *float64 `json:"trailingPE"`
			PriceToBook        *float64 `json:"priceToBook"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// yahooChart is the response structure from the v8 chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) fetchQuote(ctx context.Context, ticker string) (*yahooQuote, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", f.BaseURL, url.QueryEscape(ticker))
	var q yahooQuote
	if err := getJSON(ctx, f.Client, u, &q); err != nil {
		return nil, fmt.Errorf("yahoo quote %s: %w", ticker, err)
	}
	if q.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("%w: yahoo quote %s: %s", ErrFetch, ticker, q.QuoteResponse.Error.Description)
	}
	if len(q.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: yahoo quote %s: empty result", ErrFetch, ticker)
	}
	return &q, nil
}

func (f *YahooFetcher) FetchCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	q, err := f.fetchQuote(ctx, ticker)
	if err != nil {
		return 0, err
	}
	price := q.QuoteResponse.Result[0].RegularMarketPrice
	if price == nil {
		return 0, fmt.Errorf("%w: yahoo quote %s: missing regularMarketPrice", ErrFetch, ticker)
	}
	return checkPrice("yahoo", ticker, *price)
}

func (f *YahooFetcher) FetchValuationMetrics(ctx context.Context, ticker string) (Fundamentals, error) {
	q, err := f.fetchQuote(ctx, ticker)
	if err != nil {
		return Fundamentals{}, err
	}
	r := q.QuoteResponse.Result[0]
	return Fundamentals{
		PERatio: optional(r.TrailingPE, "trailingPE"),
		PBRatio: optional(r.PriceToBook, "priceToBook"),
	}, nil
}

func optional(v *float64, field string) model.Result[float64] {
	if v == nil {
		return model.Unavailable[float64]("missing " + field)
	}
	return model.Ok(*v)
}

func (f *YahooFetcher) FetchHistoricalCloses(ctx context.Context, ticker string, windowDays int) ([]float64, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %d", ErrFetch, windowDays)
	}
	end := f.Now()
	start := end.AddDate(0, 0, -windowDays)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		f.BaseURL, url.PathEscape(ticker), start.Unix(), end.Unix())

	var chart yahooChart
	if err := getJSON(ctx, f.Client, u, &chart); err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo chart %s: %s", ErrFetch, ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo chart %s: no data returned", ErrFetch, ticker)
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	type point struct {
		ts    int64
		close float64
	}
	points := make([]point, 0, len(closes))
	for i, c := range closes {
		if c == nil || i >= len(result.Timestamp) {
			continue // null bars on holidays and partial days
		}
		points = append(points, point{ts: result.Timestamp[i], close: *c})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].ts < points[j].ts })

	series := make([]float64, len(points))
	for i, p := range points {
		series[i] = p.close
	}
	return series, nil
}
