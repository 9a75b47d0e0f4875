package rate

import (
	"fmt"
	"fxconvert/internal/domain"
	"slices"
)

// DefaultCodes is the static list of fiat and crypto codes the service recognizes.
var DefaultCodes = []string{
	// fiat
	"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "NZD", "CNY", "HKD", "SGD",
	"SEK", "NOK", "DKK", "PLN", "CZK", "HUF", "TRY", "INR", "BRL", "MXN", "ZAR",
	"KRW", "ILS", "AED", "SAR", "THB", "IDR", "MYR", "PHP", "UAH",
	// crypto
	"BTC", "ETH", "USDT", "USDC", "BNB", "SOL", "XRP", "ADA", "DOGE", "LTC", "DOT", "TRX",
}

type Currencies struct {
	supportedCodesSet map[string]struct{} // read only copy
	supportedCodesLst []string            // read only copy
}

func (c *Currencies) IsSupported(code string) bool {
	_, ok := c.supportedCodesSet[code]
	return ok
}

// Validate reports the first of from, to that is not in the supported list.
func (c *Currencies) Validate(from, to string) error {
	if !c.IsSupported(from) {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, from)
	}
	if !c.IsSupported(to) {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, to)
	}
	return nil
}

func (c *Currencies) SupportedCodes() []string {
	return slices.Clone(c.supportedCodesLst)
}

func NewCurrencies(codes []string) *Currencies {
	codesSet := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		codesSet[code] = struct{}{}
	}
	codesLst := make([]string, 0, len(codesSet))
	for code := range codesSet {
		codesLst = append(codesLst, code)
	}
	slices.Sort(codesLst)

	return &Currencies{
		supportedCodesSet: codesSet,
		supportedCodesLst: codesLst,
	}
}
