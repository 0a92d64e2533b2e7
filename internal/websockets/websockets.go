package websockets

import (
	"sync"
	"time"

	"clinic/config"
	"clinic/internal/events"
	"clinic/internal/logger"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Manager streams every published record event to connected websocket
// clients.
type Manager struct {
	eventBus *events.EventBus
	config   config.Config
	log      logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func New(eventBus *events.EventBus, config config.Config) (*Manager, error) {
	log := logger.New("websockets").Function("New")
	if eventBus == nil {
		return nil, log.ErrMsg("event bus is nil")
	}

	return &Manager{
		eventBus: eventBus,
		config:   config,
		log:      logger.New("websockets"),
		clients:  make(map[*websocket.Conn]struct{}),
	}, nil
}

func (m *Manager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	stream, stop := m.eventBus.Subscribe(events.AllChannels)
	defer stop()

	m.add(c)
	defer m.remove(c)
	log.Info("client connected", "clients", m.ClientCount())

	// Clients only listen; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()
	// The conn is recycled once this handler returns, so the reader must be
	// gone first.
	defer func() {
		_ = c.Close()
		<-closed
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			log.Info("client disconnected")
			return

		case event, ok := <-stream:
			if !ok {
				_ = c.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait),
				)
				return
			}

			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteJSON(event); err != nil {
				log.Er("failed to write event", err, "eventID", event.ID)
				return
			}

		case <-ping.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Er("failed to ping client", err)
				return
			}
		}
	}
}

func (m *Manager) add(c *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c] = struct{}{}
}

func (m *Manager) remove(c *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, c)
}
