package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	models "BodyMetrics/internal/domain/models"
	"BodyMetrics/internal/usecase"
	xhttp "BodyMetrics/pkg/http"
	xlogger "BodyMetrics/pkg/logger"
)

const (
	FrameResults   = "results"
	FrameError     = "error"
	FrameThrottled = "throttled"
)

// LiveFrame is one server message on the live socket.
type LiveFrame struct {
	Type       string                `json:"type"`
	Results    []models.ResultRecord `json:"results,omitempty"`
	Assessment *models.Assessment    `json:"assessment,omitempty"`
	Errors     interface{}           `json:"errors,omitempty"`
}

// LiveConfig bounds each live connection.
type LiveConfig struct {
	Burst        int
	MaxRPS       float64
	ReadLimit    int64
	PingInterval time.Duration
	WriteTimeout time.Duration
	AllowOrigins []string
}

// LiveHandler recomputes results for every measurement frame a client sends.
type LiveHandler struct {
	svc      *usecase.AssessmentService
	logger   *xlogger.Logger
	cfg      LiveConfig
	upgrader websocket.Upgrader
}

func NewLiveHandler(logger *xlogger.Logger, svc *usecase.AssessmentService, cfg LiveConfig) *LiveHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.MaxRPS <= 0 {
		cfg.MaxRPS = 5
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = 4096
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	h := &LiveHandler{
		svc:    svc,
		logger: logger,
		cfg:    cfg,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *LiveHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/live", h.Serve)
}

func (h *LiveHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowOrigins) == 0 {
		return true
	}
	for _, o := range h.cfg.AllowOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// liveConn serialises writes; gorilla allows one concurrent writer.
type liveConn struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	timeout time.Duration
}

func (c *liveConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	return c.conn.WriteJSON(v)
}

func (c *liveConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.timeout))
}

// Serve upgrades the request and answers frames until the client goes away.
func (h *LiveHandler) Serve(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("live: upgrade failed", xlogger.Error(err))
		return nil
	}
	id := uuid.NewString()
	lc := &liveConn{conn: ws, timeout: h.cfg.WriteTimeout}
	l := h.logger.With(xlogger.String("conn_id", id))
	l.Debug("live: connected", xlogger.String("remote", c.RealIP()))
	lim := rate.NewLimiter(rate.Limit(h.cfg.MaxRPS), h.cfg.Burst)

	defer func() {
		_ = ws.Close()
		l.Debug("live: disconnected")
	}()

	pongWait := 2 * h.cfg.PingInterval
	ws.SetReadLimit(h.cfg.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(lc, done, l)

	ctx := c.Request().Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.Warn("live: read failed", xlogger.Error(err))
			}
			return nil
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))

		if err := lc.writeJSON(h.answer(ctx, lim, data, l)); err != nil {
			l.Warn("live: write failed", xlogger.Error(err))
			return nil
		}
	}
}

func (h *LiveHandler) keepAlive(lc *liveConn, done <-chan struct{}, l *xlogger.Logger) {
	t := time.NewTicker(h.cfg.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			if err := lc.ping(); err != nil {
				l.Debug("live: ping failed", xlogger.Error(err))
				return
			}
		}
	}
}

func (h *LiveHandler) answer(ctx context.Context, lim *rate.Limiter, data []byte, l *xlogger.Logger) LiveFrame {
	if !lim.Allow() {
		return LiveFrame{Type: FrameThrottled}
	}

	req := &models.ComputeRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return LiveFrame{Type: FrameError, Errors: []xhttp.ValidationError{{
			Code:    "ERR_BAD_REQUEST",
			Message: "frame is not valid JSON",
		}}}
	}
	if verr := xhttp.ValidateRequest(ctx, req); verr != nil {
		return LiveFrame{Type: FrameError, Errors: verr}
	}

	raw, err := req.ToRaw(h.svc.Defaults())
	if err != nil {
		return LiveFrame{Type: FrameError, Errors: []*xhttp.AppError{toAppError(l, "live input", err)}}
	}
	if req.SubjectID != "" {
		a, err := h.svc.Assess(ctx, req.SubjectID, time.Time{}, raw)
		if err != nil {
			return LiveFrame{Type: FrameError, Errors: []*xhttp.AppError{toAppError(l, "live assess", err)}}
		}
		return LiveFrame{Type: FrameResults, Results: a.Results, Assessment: a}
	}
	res, err := h.svc.Compute(ctx, raw)
	if err != nil {
		return LiveFrame{Type: FrameError, Errors: []*xhttp.AppError{toAppError(l, "live compute", err)}}
	}
	return LiveFrame{Type: FrameResults, Results: res}
}
