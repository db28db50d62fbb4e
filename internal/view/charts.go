package view

import (
	"errors"
	"sync"
)

const (
	CanvasRevenue  = "revenueChart"
	CanvasBookings = "bookingsChart"
)

// ChartConfig mirrors the Chart.js constructor argument.
type ChartConfig struct {
	Type    string         `json:"type"`
	Data    ChartData      `json:"data"`
	Options map[string]any `json:"options,omitempty"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
}

// Chart is a live chart instance bound to a canvas.
type Chart interface {
	Destroy()
}

// ChartHost constructs chart instances. At most one instance per canvas may
// be alive; callers destroy the previous one first.
type ChartHost interface {
	Construct(canvas string, cfg ChartConfig) (Chart, error)
}

var ErrCanvasInUse = errors.New("canvas already has a live chart")

// ChartBoard is the server-side ChartHost. It keeps the live config per
// canvas for page loads and pushes constructions to browsers.
type ChartBoard struct {
	mu   sync.RWMutex
	seq  uint64
	live map[string]*boardChart
	out  Broadcaster
}

type boardChart struct {
	board  *ChartBoard
	canvas string
	seq    uint64
	cfg    ChartConfig
}

func NewChartBoard(out Broadcaster) *ChartBoard {
	if out == nil {
		out = nopBroadcaster{}
	}
	return &ChartBoard{live: make(map[string]*boardChart), out: out}
}

func (b *ChartBoard) Construct(canvas string, cfg ChartConfig) (Chart, error) {
	b.mu.Lock()
	if _, ok := b.live[canvas]; ok {
		b.mu.Unlock()
		return nil, ErrCanvasInUse
	}
	b.seq++
	c := &boardChart{board: b, canvas: canvas, seq: b.seq, cfg: cfg}
	b.live[canvas] = c
	b.mu.Unlock()

	b.out.Broadcast(Update{Kind: UpdateChart, Target: canvas, Data: cfg})
	return c, nil
}

// Config returns the live configuration drawn on canvas.
func (b *ChartBoard) Config(canvas string) (ChartConfig, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.live[canvas]
	if !ok {
		return ChartConfig{}, false
	}
	return c.cfg, true
}

// Live reports how many canvases currently hold a chart.
func (b *ChartBoard) Live() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.live)
}

func (c *boardChart) Destroy() {
	b := c.board
	b.mu.Lock()
	cur, ok := b.live[c.canvas]
	if !ok || cur.seq != c.seq {
		b.mu.Unlock()
		return
	}
	delete(b.live, c.canvas)
	b.mu.Unlock()

	b.out.Broadcast(Update{Kind: UpdateChartDestroy, Target: c.canvas})
}
