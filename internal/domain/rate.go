package domain

import "maps"

// BaseCurrency is the currency every upstream rate is quoted against.
const BaseCurrency = "USD"

// Rates maps a currency code to the amount of that currency one unit of BaseCurrency buys.
// A code missing from the map means the rate is unavailable.
type Rates map[string]float64

func (r Rates) Clone() Rates {
	return maps.Clone(r)
}

// Cross returns the rate for converting from into to.
func (r Rates) Cross(from, to string) (float64, error) {
	fromRate, ok := r[from]
	if !ok {
		return 0, ErrRateUnavailable
	}
	toRate, ok := r[to]
	if !ok {
		return 0, ErrRateUnavailable
	}
	return toRate / fromRate, nil
}
