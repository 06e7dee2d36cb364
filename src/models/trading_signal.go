package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const SignalBuy = "BUY"

// MTradingSignal is a buy/sell indicator computed upstream.
type MTradingSignal struct {
	Symbol        string              `json:"symbol"`
	SignalType    string              `json:"signalType"`
	TriggerPrice  decimal.NullDecimal `json:"triggerPrice"`
	MovingAverage decimal.NullDecimal `json:"movingAverage"`
}

// LogType maps BUY to signal-buy and anything else to signal-sell.
func (s MTradingSignal) LogType() LogType {
	if s.SignalType == SignalBuy {
		return LogSignalBuy
	}
	return LogSignalSell
}

func (s MTradingSignal) String() string {
	return fmt.Sprintf("Signal for %s: %s @ %s (Avg: %s)",
		s.Symbol, s.SignalType, formatNullDecimal(s.TriggerPrice), formatNullDecimal(s.MovingAverage))
}

func formatNullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return d.Decimal.String()
}
