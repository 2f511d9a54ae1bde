package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// BindSymbol reads the :symbol path parameter, trimmed and upper-cased.
func BindSymbol(c *gin.Context) (string, error) {
	var symbol string
	err := runtime.BindStyledParameterWithOptions("simple", "symbol", c.Param("symbol"), &symbol,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter symbol: %w", err)
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("parameter symbol is required")
	}
	return symbol, nil
}

func BindGetStockHistoryParams(c *gin.Context) (GetStockHistoryParams, error) {
	var p GetStockHistoryParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.Request.URL.Query(), &p.Limit); err != nil {
		return p, fmt.Errorf("invalid format for parameter limit: %w", err)
	}
	if p.Limit != nil && *p.Limit < 1 {
		return p, fmt.Errorf("parameter limit must be positive")
	}
	return p, nil
}

func BindSearchStocksParams(c *gin.Context) (SearchStocksParams, error) {
	var p SearchStocksParams
	if err := runtime.BindQueryParameter("form", true, true, "query", c.Request.URL.Query(), &p.Query); err != nil {
		return p, fmt.Errorf("invalid format for parameter query: %w", err)
	}
	p.Query = strings.TrimSpace(p.Query)
	if p.Query == "" {
		return p, fmt.Errorf("parameter query is required")
	}
	return p, nil
}

func BindGetStockSentimentParams(c *gin.Context) (GetStockSentimentParams, error) {
	var p GetStockSentimentParams
	if err := runtime.BindQueryParameter("form", true, false, "portfolio", c.Request.URL.Query(), &p.Portfolio); err != nil {
		return p, fmt.Errorf("invalid format for parameter portfolio: %w", err)
	}
	return p, nil
}

// SplitSymbols splits a comma separated symbol list, upper-casing and dropping blanks and repeats.
func SplitSymbols(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
