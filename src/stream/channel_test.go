package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"synapse-console/src/console"
	"synapse-console/src/logger"
	"synapse-console/src/models"
	"synapse-console/src/store"
	"synapse-console/src/utils"

	"github.com/gorilla/websocket"
)

type memTokens struct{ token string }

func (m *memTokens) Initialize() error         { return nil }
func (m *memTokens) GetToken() (string, error) { return m.token, nil }
func (m *memTokens) SetToken(t string) error   { m.token = t; return nil }
func (m *memTokens) ClearToken() error         { m.token = ""; return nil }
func (m *memTokens) Close() error              { return nil }

func newTestChannel(url string) (*Channel, *store.Store) {
	st := store.NewStore(&memTokens{}, utils.NewChartBuffer(time.UTC), console.NewConsole(0), logger.NewNopLogger())
	cfg := models.MStreamConfig{URL: url, HandshakeTimeoutSeconds: 2}
	return NewChannel(cfg, st, utils.NewMarketClock(), logger.NewNopLogger()), st
}

type streamServer struct {
	*httptest.Server
	dials atomic.Int32
	auth  atomic.Value
}

func newStreamServer(t *testing.T, serve func(conn *websocket.Conn)) *streamServer {
	t.Helper()
	s := &streamServer{}
	upgrader := websocket.Upgrader{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.dials.Add(1)
		s.auth.Store(r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *streamServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

// drain blocks until the peer goes away.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func messages(st *store.Store) []string {
	var out []string
	for _, e := range st.Logs() {
		out = append(out, string(e.Type)+": "+e.Message)
	}
	return out
}

func hasLog(st *store.Store, message string) bool {
	for _, e := range st.Logs() {
		if e.Message == message {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantChart []models.MChartPoint
		wantLog   *models.MLogEntry
	}{
		{
			name:      "tick",
			raw:       `{"symbol":"AAPL","price":101.5,"timestamp":"2024-01-01T00:00:00Z"}`,
			wantChart: []models.MChartPoint{{Label: "00:00:00", Price: 101.5}},
		},
		{
			name:      "tick with zero price",
			raw:       `{"symbol":"AAPL","price":0,"timestamp":"2024-01-01T00:00:01Z"}`,
			wantChart: []models.MChartPoint{{Label: "00:00:01", Price: 0}},
		},
		{
			name:      "tick fields win over signal fields",
			raw:       `{"symbol":"AAPL","price":3,"timestamp":"2024-01-01T00:00:02Z","signalType":"BUY"}`,
			wantChart: []models.MChartPoint{{Label: "00:00:02", Price: 3}},
		},
		{
			name:    "buy signal",
			raw:     `{"symbol":"AAPL","signalType":"BUY","triggerPrice":150.25,"movingAverage":149.8}`,
			wantLog: &models.MLogEntry{Type: models.LogSignalBuy, Message: "Signal for AAPL: BUY @ 150.25 (Avg: 149.8)"},
		},
		{
			name:    "sell signal",
			raw:     `{"symbol":"MSFT","signalType":"SELL","triggerPrice":310,"movingAverage":312.5}`,
			wantLog: &models.MLogEntry{Type: models.LogSignalSell, Message: "Signal for MSFT: SELL @ 310 (Avg: 312.5)"},
		},
		{
			name:    "unknown signal type renders as sell",
			raw:     `{"symbol":"MSFT","signalType":"HOLD","triggerPrice":1,"movingAverage":2}`,
			wantLog: &models.MLogEntry{Type: models.LogSignalSell, Message: "Signal for MSFT: HOLD @ 1 (Avg: 2)"},
		},
		{
			name:    "signal without prices",
			raw:     `{"symbol":"AAPL","signalType":"BUY"}`,
			wantLog: &models.MLogEntry{Type: models.LogSignalBuy, Message: "Signal for AAPL: BUY @ n/a (Avg: n/a)"},
		},
		{name: "unrelated object", raw: `{"foo":"bar"}`},
		{name: "symbol only", raw: `{"symbol":"AAPL"}`},
		{name: "price as string", raw: `{"symbol":"AAPL","price":"101","timestamp":"2024-01-01T00:00:00Z"}`},
		{name: "null symbol", raw: `{"symbol":null,"signalType":"BUY"}`},
		{name: "array", raw: `[1,2,3]`},
		{name: "not json", raw: `hello`},
		{name: "empty", raw: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, st := newTestChannel("ws://unused")
			ch.HandleMessage([]byte(tt.raw))

			chart := st.Chart()
			if len(chart) != len(tt.wantChart) {
				t.Fatalf("chart = %v, want %v", chart, tt.wantChart)
			}
			for i := range chart {
				if chart[i] != tt.wantChart[i] {
					t.Errorf("chart[%d] = %v, want %v", i, chart[i], tt.wantChart[i])
				}
			}

			logs := st.Logs()
			if tt.wantLog == nil {
				if len(logs) != 0 {
					t.Errorf("expected no log entries, got %v", messages(st))
				}
				return
			}
			if len(logs) != 1 {
				t.Fatalf("expected exactly one log entry, got %v", messages(st))
			}
			if logs[0].Type != tt.wantLog.Type || logs[0].Message != tt.wantLog.Message {
				t.Errorf("log = %s %q, want %s %q", logs[0].Type, logs[0].Message, tt.wantLog.Type, tt.wantLog.Message)
			}
		})
	}
}

func TestTicksKeepArrivalOrderAndCap(t *testing.T) {
	ch, st := newTestChannel("ws://unused")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 45; i++ {
		ts := base.Add(time.Duration(i) * time.Second).Format(time.RFC3339)
		ch.HandleMessage([]byte(`{"symbol":"AAPL","price":` + strconv.Itoa(i) + `,"timestamp":"` + ts + `"}`))
	}

	chart := st.Chart()
	if len(chart) != utils.ChartCapacity {
		t.Fatalf("len = %d, want %d", len(chart), utils.ChartCapacity)
	}
	for i, p := range chart {
		if want := float64(15 + i); p.Price != want {
			t.Errorf("chart[%d].Price = %v, want %v", i, p.Price, want)
		}
	}
}

// -----------------------------------------------------------------------------
// Connection lifecycle
// -----------------------------------------------------------------------------

func TestConnectWithoutTokenDoesNotDial(t *testing.T) {
	srv := newStreamServer(t, drain)
	ch, st := newTestChannel(srv.wsURL())

	if err := ch.Connect(context.Background(), ""); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if n := srv.dials.Load(); n != 0 {
		t.Errorf("dials = %d, want 0", n)
	}
	if ch.State() != StateClosed {
		t.Errorf("state = %s, want closed", ch.State())
	}
	logs := st.Logs()
	if len(logs) != 1 || logs[0].Type != models.LogError || logs[0].Message != "Authentication token not found for WebSocket." {
		t.Errorf("logs = %v", messages(st))
	}
}

func TestConnectStreamsTicksAndSignals(t *testing.T) {
	srv := newStreamServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"symbol":"AAPL","price":101.5,"timestamp":"2024-01-01T00:00:00Z"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"symbol":"AAPL","signalType":"BUY","triggerPrice":101.5,"movingAverage":100}`))
		drain(conn)
	})
	ch, st := newTestChannel(srv.wsURL())
	defer ch.Disconnect()

	if err := ch.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if ch.State() != StateOpen {
		t.Errorf("state = %s, want open", ch.State())
	}

	waitFor(t, "signal log", func() bool { return len(st.Logs()) >= 3 })

	want := []string{
		"info: Connecting to real-time event stream...",
		"success: Real-time connection established.",
		"signal-buy: Signal for AAPL: BUY @ 101.5 (Avg: 100)",
	}
	got := messages(st)
	if len(got) != len(want) {
		t.Fatalf("logs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("logs[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	chart := st.Chart()
	if len(chart) != 1 || chart[0] != (models.MChartPoint{Label: "00:00:00", Price: 101.5}) {
		t.Errorf("chart = %v", chart)
	}
	if auth, _ := srv.auth.Load().(string); auth != "Bearer tok" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestServerCloseLogsClosedOnly(t *testing.T) {
	srv := newStreamServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		drain(conn)
	})
	ch, st := newTestChannel(srv.wsURL())

	if err := ch.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitFor(t, "close log", func() bool { return hasLog(st, "Real-time connection closed.") })
	waitFor(t, "closed state", func() bool { return ch.State() == StateClosed })

	if hasLog(st, "WebSocket error. See diagnostics log for details.") {
		t.Errorf("normal close must not log an error: %v", messages(st))
	}
}

func TestDroppedConnectionLogsErrorThenClose(t *testing.T) {
	srv := newStreamServer(t, func(conn *websocket.Conn) {
		conn.UnderlyingConn().Close()
	})
	ch, st := newTestChannel(srv.wsURL())

	if err := ch.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitFor(t, "close log", func() bool { return hasLog(st, "Real-time connection closed.") })

	got := messages(st)
	want := []string{
		"info: Connecting to real-time event stream...",
		"success: Real-time connection established.",
		"error: WebSocket error. See diagnostics log for details.",
		"error: Real-time connection closed.",
	}
	if len(got) != len(want) {
		t.Fatalf("logs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("logs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDialFailure(t *testing.T) {
	srv := newStreamServer(t, drain)
	url := srv.wsURL()
	srv.Close()

	ch, st := newTestChannel(url)
	if err := ch.Connect(context.Background(), "tok"); err == nil {
		t.Fatal("expected a dial error")
	}
	if ch.State() != StateClosed {
		t.Errorf("state = %s, want closed", ch.State())
	}
	want := []string{
		"info: Connecting to real-time event stream...",
		"error: WebSocket error. See diagnostics log for details.",
		"error: Real-time connection closed.",
	}
	got := messages(st)
	if len(got) != len(want) {
		t.Fatalf("logs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("logs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDisconnectIsIdempotentAndSilent(t *testing.T) {
	release := make(chan struct{})
	sent := make(chan struct{})
	srv := newStreamServer(t, func(conn *websocket.Conn) {
		<-release
		conn.WriteMessage(websocket.TextMessage, []byte(`{"symbol":"AAPL","price":1,"timestamp":"2024-01-01T00:00:00Z"}`))
		close(sent)
		drain(conn)
	})
	ch, st := newTestChannel(srv.wsURL())

	if err := ch.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	before := len(st.Logs())

	ch.Disconnect()
	ch.Disconnect()
	if ch.State() != StateClosed {
		t.Errorf("state = %s, want closed", ch.State())
	}

	close(release)
	<-sent
	time.Sleep(100 * time.Millisecond)

	if after := len(st.Logs()); after != before {
		t.Errorf("logs changed after teardown: %v", messages(st)[before:])
	}
	if n := len(st.Chart()); n != 0 {
		t.Errorf("chart changed after teardown: %d points", n)
	}
}

func TestReconnectReplacesConnection(t *testing.T) {
	srv := newStreamServer(t, drain)
	ch, st := newTestChannel(srv.wsURL())
	defer ch.Disconnect()

	for i := 0; i < 2; i++ {
		if err := ch.Connect(context.Background(), "tok"); err != nil {
			t.Fatalf("Connect #%d: %v", i, err)
		}
	}
	if n := srv.dials.Load(); n != 2 {
		t.Errorf("dials = %d, want 2", n)
	}
	time.Sleep(50 * time.Millisecond)
	if hasLog(st, "Real-time connection closed.") {
		t.Errorf("replaced connection must not report a close: %v", messages(st))
	}
}
