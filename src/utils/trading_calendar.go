package utils

import (
	"strings"
	"sync"
	"time"

	"github.com/scmhub/calendar"
)

// Symbol suffix -> ISO 10383 MIC. Symbols without a known suffix trade on NYSE.
var suffixToMIC = []struct {
	suffix string
	mic    string
}{
	{".L", "xlon"}, {".PA", "xpar"}, {".DE", "xfra"}, {".AS", "xams"},
	{".MI", "xmil"}, {".MC", "xmad"}, {".SW", "xswx"}, {".TO", "xtse"},
	{".T", "xtks"}, {".HK", "xhkg"}, {".AX", "xasx"}, {".KS", "xkrx"},
}

const defaultMIC = "xnys"

// -----------------------------------------------------------------------------

// MarketStatus is what the dashboard shows next to a symbol.
type MarketStatus struct {
	Symbol string `json:"symbol"`
	MIC    string `json:"mic"`
	Open   bool   `json:"open"`
}

// MarketClock answers "is this instrument's exchange open" using scmhub/calendar.
// Calendars are loaded lazily and cached per MIC.
type MarketClock struct {
	mu        sync.Mutex
	calendars map[string]*calendar.Calendar
	now       func() time.Time
}

// -----------------------------------------------------------------------------

func NewMarketClock() *MarketClock {
	return &MarketClock{
		calendars: make(map[string]*calendar.Calendar),
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

// MICForSymbol maps a ticker to its exchange code
func MICForSymbol(symbol string) string {
	upper := strings.ToUpper(symbol)
	for _, m := range suffixToMIC {
		if strings.HasSuffix(upper, m.suffix) {
			return m.mic
		}
	}
	return defaultMIC
}

// -----------------------------------------------------------------------------

// IsOpen reports whether symbol's exchange is in session at t.
// Without a calendar it falls back to Mon-Fri 09:30-16:00 New York time.
func (mc *MarketClock) IsOpen(symbol string, t time.Time) bool {
	cal := mc.calendarFor(MICForSymbol(symbol))
	if cal != nil {
		return cal.IsOpen(t)
	}

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		ny = time.UTC
	}
	t = t.In(ny)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	minutes := t.Hour()*60 + t.Minute()
	return minutes >= 9*60+30 && minutes < 16*60
}

// -----------------------------------------------------------------------------

// Status evaluates IsOpen at the current time
func (mc *MarketClock) Status(symbol string) MarketStatus {
	return MarketStatus{
		Symbol: symbol,
		MIC:    MICForSymbol(symbol),
		Open:   mc.IsOpen(symbol, mc.now()),
	}
}

// -----------------------------------------------------------------------------

func (mc *MarketClock) calendarFor(mic string) *calendar.Calendar {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if cal, ok := mc.calendars[mic]; ok {
		return cal
	}
	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != defaultMIC {
		cal = calendar.GetCalendar(defaultMIC)
	}
	mc.calendars[mic] = cal
	return cal
}
