package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ChanLumerico/torchlit/internal/protocol"
	"github.com/ChanLumerico/torchlit/internal/session"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// brokerFrame is one message from the broker's /ws/stream/{exp_name}
// endpoint. The broker replays cached frames on connect, then streams
// live ones. Frames carry no elapsed field; elapsed is derived from
// receive time relative to the first frame.
type brokerFrame struct {
	ExpName   string          `json:"exp_name"`
	Step      uint64          `json:"step"`
	Metrics   json.RawMessage `json:"metrics"`
	SysStats  *brokerSysStats `json:"sys_stats"`
	ModelInfo brokerModelInfo `json:"model_info"`
}

type brokerSysStats struct {
	CPUPercent  float64  `json:"cpu_percent"`
	RAMPercent  float64  `json:"ram_percent"`
	VRAMPercent *float64 `json:"vram_percent"`
}

// brokerModelInfo is non-empty only on the run's first frame.
type brokerModelInfo struct {
	Name        string               `json:"name"`
	TotalParams *protocol.ParamCount `json:"total_params"`
	Device      *string              `json:"device"`
	TotalSteps  *uint64              `json:"total_steps"`
}

// Broker streams events from a torchlit broker into the store,
// reconnecting with exponential backoff until the context is
// cancelled.
type Broker struct {
	url   string
	store *session.Store
	logf  LogFunc

	expName string
	started time.Time
}

// NewBroker creates a broker source for the given WebSocket URL.
func NewBroker(url string, store *session.Store, logf LogFunc) *Broker {
	return &Broker{url: url, store: store, logf: logf}
}

// Run dials the broker and pumps frames until ctx is cancelled.
func (b *Broker) Run(ctx context.Context) {
	delay := reconnectBaseDelay
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
		if err != nil {
			b.log("err", fmt.Sprintf("broker dial: %v (retry in %v)", err, delay))
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, reconnectMaxDelay)
			continue
		}

		b.log("ws", "connected to "+b.url)
		delay = reconnectBaseDelay
		b.readLoop(ctx, conn)
		conn.Close()
	}
}

func (b *Broker) readLoop(ctx context.Context, conn *websocket.Conn) {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				b.log("ws", "broker disconnected: "+err.Error())
			}
			return
		}
		b.handleFrame(data, time.Now())
	}
}

// handleFrame translates one broker frame into session events. The
// receive clock is passed in for testability.
func (b *Broker) handleFrame(data []byte, now time.Time) {
	var f brokerFrame
	if err := json.Unmarshal(data, &f); err != nil {
		b.log("drop", "broker frame: "+err.Error())
		return
	}

	if b.started.IsZero() {
		b.started = now
	}

	// A fresh experiment name or a populated model_info re-initializes
	// run identity, same as an init line on stdin would.
	if f.ExpName != b.expName || f.ModelInfo != (brokerModelInfo{}) {
		b.expName = f.ExpName
		init := &protocol.Init{Name: f.ExpName, TotalSteps: f.ModelInfo.TotalSteps}
		if f.ModelInfo.Name != "" {
			init.ModelName, init.HasModel = f.ModelInfo.Name, true
		}
		if f.ModelInfo.TotalParams != nil {
			init.TotalParams, init.HasParams = string(*f.ModelInfo.TotalParams), true
		}
		if f.ModelInfo.Device != nil {
			init.Device, init.HasDevice = *f.ModelInfo.Device, true
		}
		b.store.Apply(init)
	}

	// Reuse the stdin decoder's numeric filtering by round-tripping
	// through the wire format.
	line, err := json.Marshal(map[string]any{
		"type":    "step",
		"step":    f.Step,
		"metrics": f.Metrics,
		"elapsed": now.Sub(b.started).Seconds(),
	})
	if err != nil {
		return
	}
	if ev, ok := protocol.Decode(string(line)); ok {
		b.store.Apply(ev)
	}

	if f.SysStats != nil {
		b.store.SetProducerSys(f.SysStats.CPUPercent, f.SysStats.RAMPercent, f.SysStats.VRAMPercent)
	}
}

func (b *Broker) log(kind, msg string) {
	if b.logf != nil {
		b.logf(kind, msg)
	}
}
