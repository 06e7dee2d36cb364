package stream

import (
	"encoding/json"

	"synapse-console/src/models"

	"github.com/shopspring/decimal"
)

type messageKind int

const (
	kindUnknown messageKind = iota
	kindTick
	kindSignal
)

// classify decides what an inbound frame is. A field counts as present when the
// key exists, is not null and has the right JSON type; strings must be non-empty.
func classify(raw []byte) (messageKind, models.MPriceTick, models.MTradingSignal, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return kindUnknown, models.MPriceTick{}, models.MTradingSignal{}, err
	}

	symbol, hasSymbol := stringField(fields, "symbol")
	price, hasPrice := numberField(fields, "price")
	timestamp, hasTimestamp := stringField(fields, "timestamp")

	if hasSymbol && hasPrice && hasTimestamp {
		return kindTick, models.MPriceTick{Symbol: symbol, Price: price, Timestamp: timestamp}, models.MTradingSignal{}, nil
	}

	signalType, hasSignalType := stringField(fields, "signalType")
	if hasSymbol && hasSignalType {
		signal := models.MTradingSignal{
			Symbol:        symbol,
			SignalType:    signalType,
			TriggerPrice:  decimalField(fields, "triggerPrice"),
			MovingAverage: decimalField(fields, "movingAverage"),
		}
		return kindSignal, models.MPriceTick{}, signal, nil
	}

	return kindUnknown, models.MPriceTick{}, models.MTradingSignal{}, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func numberField(fields map[string]json.RawMessage, key string) (float64, bool) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

func decimalField(fields map[string]json.RawMessage, key string) decimal.NullDecimal {
	var d decimal.NullDecimal
	raw, ok := fields[key]
	if !ok {
		return d
	}
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.NullDecimal{}
	}
	return d
}
