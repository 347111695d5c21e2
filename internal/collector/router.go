package collector

import (
	"context"
	"strings"

	"PortfolioTracker/internal/model"
)

// InstrumentClass is the provider routing class of a ticker.
type InstrumentClass string

const (
	ClassEquity InstrumentClass = "equity"
	ClassCrypto InstrumentClass = "crypto"
)

// DefaultCryptoSuffixes mark a crypto asset quoted against a fiat currency.
var DefaultCryptoSuffixes = []string{"-USD"}

// Router dispatches each call to the provider serving the ticker's instrument class.
// Spot prices for crypto pairs go to Crypto; everything else goes to Equity, whose chart
// history also covers pairs such as BTC-USD.
type Router struct {
	Equity         PriceSource
	Crypto         SpotFetcher
	CryptoSuffixes []string
}

// NewRouter creates a Router. Nil suffixes fall back to DefaultCryptoSuffixes.
func NewRouter(equity PriceSource, crypto SpotFetcher, cryptoSuffixes []string) *Router {
	if len(cryptoSuffixes) == 0 {
		cryptoSuffixes = DefaultCryptoSuffixes
	}
	return &Router{Equity: equity, Crypto: crypto, CryptoSuffixes: cryptoSuffixes}
}

func (r *Router) Name() string { return r.Equity.Name() + "+" + r.Crypto.Name() }

// Classify returns the instrument class of a ticker by its naming convention.
func (r *Router) Classify(ticker string) InstrumentClass {
	t := model.NormalizeTicker(ticker)
	for _, s := range r.CryptoSuffixes {
		if strings.HasSuffix(t, strings.ToUpper(s)) && len(t) > len(s) {
			return ClassCrypto
		}
	}
	return ClassEquity
}

func (r *Router) FetchCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	if r.Classify(ticker) == ClassCrypto {
		return r.Crypto.FetchCurrentPrice(ctx, ticker)
	}
	return r.Equity.FetchCurrentPrice(ctx, ticker)
}

func (r *Router) FetchHistoricalCloses(ctx context.Context, ticker string, windowDays int) ([]float64, error) {
	return r.Equity.FetchHistoricalCloses(ctx, ticker, windowDays)
}

// FetchValuationMetrics reports no ratios for crypto pairs without calling a provider.
func (r *Router) FetchValuationMetrics(ctx context.Context, ticker string) (Fundamentals, error) {
	if r.Classify(ticker) == ClassCrypto {
		return Fundamentals{
			PERatio: model.Unavailable[float64]("not applicable to crypto"),
			PBRatio: model.Unavailable[float64]("not applicable to crypto"),
		}, nil
	}
	return r.Equity.FetchValuationMetrics(ctx, ticker)
}
