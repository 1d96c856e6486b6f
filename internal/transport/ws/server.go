package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cwrk-planet/meeting-service/internal/domain"
	"github.com/cwrk-planet/meeting-service/internal/service"
	httpmw "github.com/cwrk-planet/meeting-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/meeting-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type MeetingSvc interface {
	View(ctx context.Context, id string, viewer domain.Participant) (service.MeetingView, error)
	ViewOf(m *domain.Meeting, viewer domain.Participant) service.MeetingView
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	svc      MeetingSvc

	pingEvery  time.Duration
	sendBuffer int
}

func NewServer(hub *Hub, svc MeetingSvc) *Server {
	return &Server{
		hub: hub,
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		pingEvery:  15 * time.Second,
		sendBuffer: 32,
	}
}

// HandleWS serves GET /ws/meetings/{id}. The session middleware must run first.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	viewer, ok := httpmw.ParticipantFromCtx(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	meetingID := chi.URLParam(r, "id")
	log := logger.FromContext(r.Context()).With("meeting_id", meetingID, "viewer", viewer.GHID)

	// fail before upgrading so the client sees a plain 404
	if _, err := s.svc.View(r.Context(), meetingID, viewer); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Meeting not found.", http.StatusNotFound)
			return
		}
		log.Error("ws load meeting failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, meetingID, viewer, s.svc, s.sendBuffer, log)
	s.hub.Add(c)
	defer s.hub.Remove(c)

	// registered before loading, so no commit between the two is lost
	view, err := s.svc.View(r.Context(), meetingID, viewer)
	if err != nil {
		log.Warn("ws initial state failed", "err", err)
		_ = c.Close()
		return
	}
	c.pushView(view)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	go s.writeLoop(ctx, c)
	s.readLoop(c)

	if err := c.Close(); err != nil {
		log.Debug("ws close failed", "err", err)
	}
}

// readLoop only keeps the connection alive; clients send commands over the JSON API.
func (s *Server) readLoop(c *wsConn) {
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Debug("ws write failed", "err", err)
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				_ = c.Close()
				return
			}
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

type wsConn struct {
	conn      *websocket.Conn
	meetingID string
	viewer    domain.Participant
	svc       MeetingSvc
	log       *slog.Logger

	out       chan Message
	closed    chan struct{}
	closeOnce sync.Once

	mu          sync.Mutex
	lastVersion int64
}

func newWsConn(c *websocket.Conn, meetingID string, viewer domain.Participant, svc MeetingSvc, buffer int, log *slog.Logger) *wsConn {
	return &wsConn{
		conn:        c,
		meetingID:   meetingID,
		viewer:      viewer,
		svc:         svc,
		log:         log,
		out:         make(chan Message, buffer),
		closed:      make(chan struct{}),
		lastVersion: -1,
	}
}

func (c *wsConn) Push(m *domain.Meeting) {
	c.pushView(c.svc.ViewOf(m, c.viewer))
}

// pushView drops snapshots older than one already queued and closes
// connections that cannot keep up.
func (c *wsConn) pushView(v service.MeetingView) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v.Meeting.Version <= c.lastVersion {
		return
	}
	select {
	case c.out <- Message{Type: TypeState, Payload: v}:
		c.lastVersion = v.Meeting.Version
	case <-c.closed:
	default:
		c.log.Warn("ws client too slow, dropping connection")
		go func() { _ = c.Close() }()
	}
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) MeetingID() string { return c.meetingID }
