package analysis

import (
	"synapse-console/src/analysis/core"
	"synapse-console/src/models"
)

// Crossover is emitted when the short moving average crosses the long one.
type Crossover struct {
	Symbol      string
	SignalType  string // BUY when the short average moves above the long one, SELL otherwise
	Price       float64
	LongAverage float64
	ZScore      float64 // price against the long window
}

// -----------------------------------------------------------------------------

// CrossoverDetector keeps a bounded price history per symbol. Not safe for
// concurrent use.
type CrossoverDetector struct {
	shortWindow int
	longWindow  int
	history     map[string][]float64
	side        map[string]int
}

// -----------------------------------------------------------------------------

func NewCrossoverDetector(shortWindow, longWindow int) *CrossoverDetector {
	if shortWindow < 1 {
		shortWindow = 1
	}
	if longWindow <= shortWindow {
		longWindow = shortWindow + 1
	}
	return &CrossoverDetector{
		shortWindow: shortWindow,
		longWindow:  longWindow,
		history:     make(map[string][]float64),
		side:        make(map[string]int),
	}
}

// -----------------------------------------------------------------------------

// Observe records price and reports a crossover if this observation caused one.
// Nothing is reported until the long window is full.
func (d *CrossoverDetector) Observe(symbol string, price float64) (Crossover, bool) {
	h := append(d.history[symbol], price)
	if len(h) > d.longWindow {
		h = h[len(h)-d.longWindow:]
	}
	d.history[symbol] = h

	if len(h) < d.longWindow {
		return Crossover{}, false
	}

	shortMean, _ := core.CalculateMeanStd(h[len(h)-d.shortWindow:])
	longMean, longStd := core.CalculateMeanStd(h)

	side := 0
	switch {
	case shortMean > longMean:
		side = 1
	case shortMean < longMean:
		side = -1
	default:
		return Crossover{}, false
	}

	prev := d.side[symbol]
	d.side[symbol] = side
	if prev == 0 || prev == side {
		return Crossover{}, false
	}

	signalType := "SELL"
	if side > 0 {
		signalType = models.SignalBuy
	}
	return Crossover{
		Symbol:      symbol,
		SignalType:  signalType,
		Price:       price,
		LongAverage: longMean,
		ZScore:      core.CalculateZScore(price, longMean, longStd),
	}, true
}
