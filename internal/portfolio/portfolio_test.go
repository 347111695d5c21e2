package portfolio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioTracker/internal/model"
)

func sampleHoldings() []model.Holding {
	return []model.Holding{
		{Ticker: "AAPL", Quantity: 10, Price: 187.44},
		{Ticker: "BTC-USD", Quantity: 0.25, Price: 64012.35},
		{Ticker: "AAPL", Quantity: 3, Price: 190.1},
	}
}

func TestPortfolio_AppendPreservesOrder(t *testing.T) {
	p := New()
	for _, h := range sampleHoldings() {
		p.Append(h)
	}
	assert.Equal(t, sampleHoldings(), p.Holdings())
	assert.Equal(t, 3, p.Len())
}

func TestPortfolio_HoldingsIsACopy(t *testing.T) {
	p := New(sampleHoldings()...)
	hs := p.Holdings()
	hs[0].Ticker = "MUTATED"
	assert.Equal(t, "AAPL", p.Holdings()[0].Ticker)
}

func TestPortfolio_ExportImportRoundTrip(t *testing.T) {
	src := New(sampleHoldings()...)
	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	dst := New(model.Holding{Ticker: "OLD", Quantity: 1, Price: 1})
	require.NoError(t, dst.Import(&buf))
	assert.Equal(t, src.Holdings(), dst.Holdings())
}

func TestPortfolio_ExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Export(&buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPortfolio_ImportRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "ticker,quantity\nAAPL,1"},
		{"object", `{"ticker":"AAPL","quantity":1,"price":1}`},
		{"null", `null`},
		{"array of numbers", `[1,2,3]`},
		{"missing ticker", `[{"quantity":1,"price":1}]`},
		{"zero quantity", `[{"ticker":"AAPL","quantity":0,"price":1}]`},
		{"negative price", `[{"ticker":"AAPL","quantity":1,"price":-1}]`},
		{"truncated", `[{"ticker":"AAPL","quantity":1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(sampleHoldings()...)
			err := p.Import(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)
			assert.Equal(t, sampleHoldings(), p.Holdings(), "portfolio must be unchanged")
		})
	}
}

func TestPortfolio_ImportNormalizesTickers(t *testing.T) {
	p := New()
	require.NoError(t, p.Import(strings.NewReader(`[{"ticker":" msft ","quantity":2,"price":400}]`)))
	assert.Equal(t, "MSFT", p.Holdings()[0].Ticker)
}

func TestPortfolio_SaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portfolio.json")
	src := New(sampleHoldings()...)
	require.NoError(t, src.SaveFile(path))

	dst := New()
	require.NoError(t, dst.LoadFile(path))
	assert.Equal(t, sampleHoldings(), dst.Holdings())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestPortfolio_LoadMissingFile(t *testing.T) {
	p := New()
	require.NoError(t, p.LoadFile(filepath.Join(t.TempDir(), "absent.json")))
	assert.Zero(t, p.Len())
}

func TestPortfolio_ConcurrentAppend(t *testing.T) {
	p := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Append(model.Holding{Ticker: "AAPL", Quantity: 1, Price: 1})
			_ = p.Holdings()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, p.Len())
}
