package model

import "github.com/shopspring/decimal"

// PriceQuote is the current price of a single instrument.
//
// Instruments are identified by the service's own short uppercase codes
// (e.g. "BTCUSD"), not by upstream-native symbols. Prices are exact
// decimals; the textual precision of the upstream feed is preserved.
type PriceQuote struct {
	Instrument string          `json:"instrument"`
	Price      decimal.Decimal `json:"price"`
}
