package main

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"synapse-console/src/analysis"
	"synapse-console/src/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

type tickFrame struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

type signalFrame struct {
	Symbol        string          `json:"symbol"`
	SignalType    string          `json:"signalType"`
	TriggerPrice  decimal.Decimal `json:"triggerPrice"`
	MovingAverage decimal.Decimal `json:"movingAverage"`
}

// -----------------------------------------------------------------------------

// feed simulates prices with a random walk and emits crossover signals.
type feed struct {
	symbols  []string
	prices   map[string]float64
	detector *analysis.CrossoverDetector
	rng      *rand.Rand
	tokens   *tokenIssuer
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newFeed(symbols []string, tokens *tokenIssuer, log *logger.Logger) *feed {
	f := &feed{
		prices:   make(map[string]float64),
		detector: analysis.NewCrossoverDetector(5, 20),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		tokens:   tokens,
		logger:   log.Named("Feed"),
		clients:  make(map[*websocket.Conn]struct{}),
	}
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		f.symbols = append(f.symbols, s)
		f.prices[s] = 50 + f.rng.Float64()*250
	}
	return f
}

// -----------------------------------------------------------------------------

// step advances every symbol once and returns the frames to send.
func (f *feed) step(now time.Time) []interface{} {
	var frames []interface{}
	for _, s := range f.symbols {
		p := f.prices[s] * (1 + f.rng.NormFloat64()*0.002)
		p = math.Round(p*100) / 100
		f.prices[s] = p

		frames = append(frames, tickFrame{Symbol: s, Price: p, Timestamp: now.UTC().Format(time.RFC3339Nano)})

		if c, ok := f.detector.Observe(s, p); ok {
			frames = append(frames, signalFrame{
				Symbol:        c.Symbol,
				SignalType:    c.SignalType,
				TriggerPrice:  decimal.NewFromFloat(c.Price).Round(2),
				MovingAverage: decimal.NewFromFloat(c.LongAverage).Round(2),
			})
		}
	}
	return frames
}

// -----------------------------------------------------------------------------

func (f *feed) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.closeAll()
			return
		case now := <-ticker.C:
			for _, frame := range f.step(now) {
				f.broadcast(frame)
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (f *feed) broadcast(frame interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.clients {
		conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := conn.WriteJSON(frame); err != nil {
			f.logger.Debug("dropping stream client: %v", err)
			conn.Close()
			delete(f.clients, conn)
		}
	}
}

func (f *feed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.clients {
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
		conn.Close()
		delete(f.clients, conn)
	}
}

// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (f *feed) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/ws/events", f.handleStream)
	return r
}

func (f *feed) handleStream(c *gin.Context) {
	if !f.tokens.valid(bearer(c.Request)) {
		c.Status(http.StatusUnauthorized)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		f.logger.Warning("upgrade failed: %v", err)
		return
	}

	f.mu.Lock()
	f.clients[conn] = struct{}{}
	f.mu.Unlock()
	f.logger.Info("Stream client connected from %s", c.ClientIP())

	// receive-only for the client; reading keeps control frames flowing
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				f.mu.Lock()
				if _, ok := f.clients[conn]; ok {
					delete(f.clients, conn)
					conn.Close()
				}
				f.mu.Unlock()
				return
			}
		}
	}()
}
