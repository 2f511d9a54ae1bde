// Package catalogfile reads the stock catalog seed file.
package catalogfile

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"stock_watchlist/internal/feature/stocks/domain/entity"
)

type file struct {
	Stocks []struct {
		Symbol   string `yaml:"symbol"`
		Name     string `yaml:"name"`
		Exchange string `yaml:"exchange"`
		Industry string `yaml:"industry"`
	} `yaml:"stocks"`
}

// Load reads a YAML catalog from path.
func Load(path string) ([]entity.Stock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a catalog document of the form
//
//	stocks:
//	  - symbol: TCS
//	    name: Tata Consultancy Services
//	    exchange: NSE
//	    industry: IT
func Decode(r io.Reader) ([]entity.Stock, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]entity.Stock, 0, len(doc.Stocks))
	for _, s := range doc.Stocks {
		out = append(out, entity.Stock{
			Symbol:   s.Symbol,
			Name:     s.Name,
			Exchange: s.Exchange,
			Industry: s.Industry,
			IsActive: true,
		})
	}
	return out, nil
}
