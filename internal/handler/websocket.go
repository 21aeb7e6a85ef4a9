package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"vesseltrack/internal/domain"
	"vesseltrack/internal/replay"
	"vesseltrack/internal/store"
)

// WSHandler streams dataset playback over a websocket: the client picks a
// dataset and a speed factor, the server replays the merged telemetry rows
// with their recorded spacing compressed by that factor.
type WSHandler struct {
	registry     *replay.Registry
	store        *store.Store
	defaultSpeed float64
	maxStep      time.Duration
	logger       *slog.Logger
}

func NewWSHandler(reg *replay.Registry, s *store.Store, defaultSpeed float64, maxStep time.Duration, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		registry:     reg,
		store:        s,
		defaultSpeed: defaultSpeed,
		maxStep:      maxStep,
		logger:       logger.With("component", "ws_handler"),
	}
}

type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type PlayPayload struct {
	DatasetID    string  `json:"datasetId"`
	JourneyIndex int     `json:"journeyIndex,omitempty"`
	Speed        float64 `json:"speed"`
}

type StartPayload struct {
	SessionID    string  `json:"sessionId"`
	DatasetID    string  `json:"datasetId"`
	JourneyIndex int     `json:"journeyIndex,omitempty"`
	Speed        float64 `json:"speed"`
	TotalRows    int     `json:"totalRows"`
}

type PositionPayload struct {
	Index int               `json:"index"`
	Total int               `json:"total"`
	Row   domain.RawDataRow `json:"row"`
}

// wsClient is one websocket connection's send side.
type wsClient struct {
	id   string
	send chan []byte

	mu      sync.Mutex
	session *replay.Session
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	ServerStats.IncWSConnections()
	defer ServerStats.DecWSConnections()

	client := &wsClient{
		id:   uuid.New().String(),
		send: make(chan []byte, 256),
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writeLoop(ctx, conn, client)

	h.readLoop(ctx, conn, client)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *wsClient) {
	defer func() {
		h.stopPlayback(client)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.Debug("websocket read error", "client_id", client.id, "error", err)
			}
			return
		}

		if msgType != websocket.MessageText {
			continue
		}
		ServerStats.IncWSMessagesIn()

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("invalid message format", "client_id", client.id, "error", err)
			continue
		}

		switch msg.Type {
		case "play":
			var payload PlayPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			h.startPlayback(ctx, client, payload)

		case "stop":
			h.stopPlayback(client)

		case "ping":
			h.sendTyped(client, "pong", nil)
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *wsClient) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-client.send:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
			ServerStats.IncWSMessagesOut()

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// startPlayback validates the request, replaces any running session and
// launches the streaming goroutine.
func (h *WSHandler) startPlayback(ctx context.Context, client *wsClient, payload PlayPayload) {
	ds, ok := h.store.Get(payload.DatasetID)
	if !ok {
		h.sendError(client, "dataset not found")
		return
	}

	rows := ds.Rows
	if payload.JourneyIndex > 0 {
		rows = journeyRows(ds.Result, payload.JourneyIndex)
		if rows == nil {
			h.sendError(client, "journey not found")
			return
		}
	}
	if len(rows) == 0 {
		h.sendError(client, "no replayable rows")
		return
	}

	speed := payload.Speed
	if speed <= 0 {
		speed = h.defaultSpeed
	}

	h.stopPlayback(client)

	playCtx, cancel := context.WithCancel(ctx)
	session := replay.NewSession(ds.ID, speed, cancel)

	client.mu.Lock()
	client.session = session
	client.mu.Unlock()

	h.registry.Register(session)

	h.sendTyped(client, "start", StartPayload{
		SessionID:    session.ID,
		DatasetID:    ds.ID,
		JourneyIndex: payload.JourneyIndex,
		Speed:        speed,
		TotalRows:    len(rows),
	})

	go h.streamRows(playCtx, client, session, rows)
}

// journeyRows rebuilds the playable row sequence of one journey from its
// classified intervals. Only complete journeys carry intervals, so incomplete
// ones yield an empty (non-nil) slice. A nil return means the index does not
// exist in the result.
func journeyRows(result *domain.Result, journeyIndex int) []domain.RawDataRow {
	if result == nil || result.Data == nil {
		return nil
	}
	for _, j := range result.Data.Journeys {
		if j.JourneyIndex != journeyIndex {
			continue
		}
		rows := make([]domain.RawDataRow, 0, len(j.Intervals)*8)
		for _, iv := range j.Intervals {
			for _, p := range iv.CoordinatePoints {
				rows = append(rows, domain.RawDataRow{
					Timestamp: p.Timestamp,
					Latitude:  p.Lat,
					Longitude: p.Lon,
					Speed:     p.Speed,
					NavStatus: p.NavStatus,
				})
			}
		}
		return rows
	}
	return nil
}

func (h *WSHandler) streamRows(ctx context.Context, client *wsClient, session *replay.Session, rows []domain.RawDataRow) {
	defer h.registry.Unregister(session)

	start := time.Now()
	for i := range rows {
		if i > 0 {
			delay := replay.StepDelay(rows[i-1], rows[i], session.Speed, h.maxStep)
			if delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}
		}

		data, err := json.Marshal(WSMessage{
			Type:    "position",
			Payload: mustMarshal(PositionPayload{Index: i, Total: len(rows), Row: rows[i]}),
		})
		if err != nil {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case client.send <- data:
		}
	}

	h.sendTyped(client, "complete", nil)
	h.logger.Info("replay completed",
		"session_id", session.ID,
		"dataset_id", session.DatasetID,
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (h *WSHandler) stopPlayback(client *wsClient) {
	client.mu.Lock()
	session := client.session
	client.session = nil
	client.mu.Unlock()

	if session != nil {
		session.Stop()
	}
}

func (h *WSHandler) sendError(client *wsClient, message string) {
	h.sendTyped(client, "error", map[string]string{"message": message})
}

func (h *WSHandler) sendTyped(client *wsClient, msgType string, payload any) {
	msg := WSMessage{Type: msgType}
	if payload != nil {
		msg.Payload = mustMarshal(payload)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case client.send <- data:
	default:
		h.logger.Debug("send buffer full, dropping message", "client_id", client.id, "type", msgType)
	}
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(fmt.Sprintf("%q", err.Error()))
	}
	return data
}
