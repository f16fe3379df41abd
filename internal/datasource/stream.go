package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// StreamClient consumes a live-timing WebSocket feed that pushes provisional
// race classifications while a race is running. Rows received here are marked
// provisional and are replaced by the historical provider after the race.
type StreamClient struct {
	conn            *websocket.Conn
	apiKey          string
	streamURL       string
	mu              sync.RWMutex
	isConnected     bool
	handlers        []ResultHandler
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *logrus.Logger
}

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// ResultHandler is called for each classification update received from the stream
type ResultHandler func(update ClassificationUpdate) error

// StreamMessage is the envelope for live-timing messages
type StreamMessage struct {
	Op      string                 `json:"op"`
	ID      int                    `json:"id,omitempty"`
	Status  int                    `json:"status,omitempty"`
	Season  int                    `json:"season,omitempty"`
	Round   int                    `json:"round,omitempty"`
	Updates []ClassificationUpdate `json:"updates,omitempty"`
}

// ClassificationUpdate is a provisional position change for one driver
type ClassificationUpdate struct {
	Season      int    `json:"season"`
	Round       int    `json:"round"`
	Circuit     string `json:"circuit"`
	Driver      string `json:"driver"`
	Constructor string `json:"constructor"`
	Position    int    `json:"position"`
	PitStops    int    `json:"pitStops"`
	Retired     bool   `json:"retired"`
	Lap         int    `json:"lap"`
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// NewStreamClient creates a new live-timing stream client
func NewStreamClient(streamURL, apiKey string, logger *logrus.Logger) *StreamClient {
	return &StreamClient{
		apiKey:          apiKey,
		streamURL:       streamURL,
		handlers:        make([]ResultHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// Connect establishes the WebSocket connection
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	wsURL := fmt.Sprintf("wss://%s/live", s.streamURL)

	s.logger.Infof("Connecting to live timing stream: %s", wsURL)

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()

	s.logger.Info("Connected to live timing stream")

	// Start message reading loop
	go s.readMessages()

	return nil
}

// Authenticate sends the authentication message
func (s *StreamClient) Authenticate(ctx context.Context) error {
	return s.sendMessage(map[string]interface{}{
		"op":     "auth",
		"apiKey": s.apiKey,
	})
}

// SubscribeToRace subscribes to classification updates for one race
func (s *StreamClient) SubscribeToRace(ctx context.Context, season, round int) error {
	s.logger.Infof("Subscribing to live classification for %d round %d", season, round)
	return s.sendMessage(map[string]interface{}{
		"op":        "subscribe",
		"season":    season,
		"round":     round,
		"heartbeat": true,
	})
}

// AddHandler registers a classification update handler
func (s *StreamClient) AddHandler(handler ResultHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// readMessages reads messages from the WebSocket connection
func (s *StreamClient) readMessages() {
	defer s.Close()

	for {
		var raw json.RawMessage
		if err := s.conn.ReadJSON(&raw); err != nil {
			s.logger.WithError(err).Warn("Stream read failed")
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		var msg StreamMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.WithError(err).Warn("Dropping malformed stream message")
			continue
		}

		if msg.Op != "classification" {
			continue
		}

		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()

		for _, update := range msg.Updates {
			for _, handler := range handlers {
				if err := handler(update); err != nil {
					s.logger.WithError(err).Warn("Classification handler error")
				}
			}
		}
	}
}

// sendMessage sends a JSON message to the stream
func (s *StreamClient) sendMessage(msg interface{}) error {
	s.mu.RLock()
	if !s.isConnected || s.conn == nil {
		s.mu.RUnlock()
		return fmt.Errorf("not connected")
	}
	conn := s.conn
	s.mu.RUnlock()

	return conn.WriteJSON(msg)
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	s.isConnected = false
	return s.conn.Close()
}

// Ping sends a ping message to keep the connection alive
func (s *StreamClient) Ping() error {
	return s.sendMessage(map[string]interface{}{
		"op": "ping",
	})
}
