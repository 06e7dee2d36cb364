package analysis

import "testing"

func TestCrossoverDetector(t *testing.T) {
	d := NewCrossoverDetector(2, 4)

	// falling prices put the short average below the long one
	for _, p := range []float64{10, 9, 8, 7} {
		if _, ok := d.Observe("AAPL", p); ok {
			t.Fatalf("unexpected crossover at %v", p)
		}
	}

	// a sharp rise flips it
	c, ok := d.Observe("AAPL", 15)
	if !ok {
		t.Fatal("expected a crossover")
	}
	if c.SignalType != "BUY" || c.Price != 15 || c.Symbol != "AAPL" {
		t.Errorf("unexpected crossover %+v", c)
	}
	if want := (8.0 + 7 + 15 + 9) / 4; c.LongAverage != want {
		t.Errorf("long average = %v, want %v", c.LongAverage, want)
	}

	// staying above does not repeat the signal
	if _, ok := d.Observe("AAPL", 16); ok {
		t.Error("crossover repeated while the side did not change")
	}

	c, ok = d.Observe("AAPL", 1)
	if !ok || c.SignalType != "SELL" {
		t.Errorf("expected SELL crossover, got %+v %v", c, ok)
	}
}

func TestCrossoverDetectorTracksSymbolsIndependently(t *testing.T) {
	d := NewCrossoverDetector(1, 2)
	d.Observe("AAPL", 1)
	d.Observe("MSFT", 100)
	d.Observe("AAPL", 0)
	d.Observe("MSFT", 101)

	if _, ok := d.Observe("AAPL", 5); !ok {
		t.Error("expected AAPL crossover")
	}
	if _, ok := d.Observe("MSFT", 102); ok {
		t.Error("MSFT kept rising, no crossover expected")
	}
}

func TestNewCrossoverDetectorNormalisesWindows(t *testing.T) {
	d := NewCrossoverDetector(0, 0)
	if d.shortWindow != 1 || d.longWindow != 2 {
		t.Errorf("windows = %d/%d, want 1/2", d.shortWindow, d.longWindow)
	}
}
