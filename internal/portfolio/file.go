package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"PortfolioTracker/internal/model"
)

// ErrFormat is returned when an imported portfolio cannot be parsed.
var ErrFormat = errors.New("invalid portfolio format")

// Export writes the holdings as a JSON array.
func (p *Portfolio) Export(w io.Writer) error {
	data, err := json.MarshalIndent(p.Holdings(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write portfolio: %w", err)
	}
	return nil
}

// Import parses a JSON array of holdings and replaces the portfolio with it.
// On any error the portfolio is left untouched.
func (p *Portfolio) Import(r io.Reader) error {
	holdings, err := Decode(r)
	if err != nil {
		return err
	}
	p.Replace(holdings)
	return nil
}

// Decode parses and validates an exported holdings list.
func Decode(r io.Reader) ([]model.Holding, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read portfolio: %w", err)
	}
	var holdings []model.Holding
	if err := json.Unmarshal(data, &holdings); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if holdings == nil {
		return nil, fmt.Errorf("%w: expected a JSON array of holdings", ErrFormat)
	}
	for i := range holdings {
		h := &holdings[i]
		h.Ticker = model.NormalizeTicker(h.Ticker)
		switch {
		case h.Ticker == "":
			return nil, fmt.Errorf("%w: entry %d: missing ticker", ErrFormat, i)
		case math.IsNaN(h.Quantity) || math.IsInf(h.Quantity, 0) || h.Quantity <= 0:
			return nil, fmt.Errorf("%w: entry %d (%s): quantity must be positive", ErrFormat, i, h.Ticker)
		case h.Price < 0:
			return nil, fmt.Errorf("%w: entry %d (%s): negative price", ErrFormat, i, h.Ticker)
		}
	}
	return holdings, nil
}

// SaveFile exports the portfolio to path, creating parent directories.
// The file is written to a temporary sibling first and renamed into place.
func (p *Portfolio) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create portfolio dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".portfolio-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := p.Export(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile imports the portfolio from path. A missing file is not an error.
func (p *Portfolio) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open portfolio: %w", err)
	}
	defer f.Close()
	return p.Import(f)
}
