package v1

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/usecase"
	"mutitpay-storefront/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxFrameSize = 4 << 10
)

// Frame types on the live search socket
const (
	frameInput    = "input"
	frameFocus    = "focus"
	frameBlur     = "blur"
	frameSubmit   = "submit"
	framePanel    = "panel"
	frameNavigate = "navigate"
)

// clientFrame is one message typed into the search box
type clientFrame struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

type serverFrame struct {
	Type  string              `json:"type"`
	Panel *domain.SearchPanel `json:"panel,omitempty"`
	URL   string              `json:"url,omitempty"`
}

// LiveSearchHandler keeps one SearchSession per websocket connection
type LiveSearchHandler struct {
	searchUC *usecase.SearchUsecase
	debounce time.Duration
	upgrader websocket.Upgrader
}

// NewLiveSearchHandler accepts connections from the comma separated
// allowedOrigins, "*" allowing any
func NewLiveSearchHandler(searchUC *usecase.SearchUsecase, debounce time.Duration, allowedOrigins string) *LiveSearchHandler {
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return &LiveSearchHandler{
		searchUC: searchUC,
		debounce: debounce,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, o := range origins {
					if o == "*" || o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

func (h *LiveSearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		logger.WithContext(r.Context()).Debug().Err(err).Msg("Live search upgrade failed")
		return
	}
	log := logger.WithContext(r.Context())

	out := newOutbox()
	session := usecase.NewSearchSession(r.Context(), h.searchUC, h.debounce, out.putPanel)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeLoop(conn, out)
	}()

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("Live search connection dropped")
			}
			break
		}
		var f clientFrame
		if err := json.Unmarshal(data, &f); err != nil {
			log.Debug().Err(err).Msg("Ignoring malformed live search frame")
			continue
		}
		switch f.Type {
		case frameInput:
			session.Input(f.Value)
		case frameFocus:
			session.Focus()
		case frameBlur:
			session.Blur()
		case frameSubmit:
			if url, ok := session.Submit(); ok {
				out.putNavigate(url)
			}
		default:
			log.Debug().Str("type", f.Type).Msg("Ignoring unknown live search frame")
		}
	}

	session.Close()
	out.close()
	<-writerDone
	conn.Close()
}

// writeLoop is the only goroutine that writes to conn
func writeLoop(conn *websocket.Conn, out *outbox) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-out.ready:
			if err := writeFrames(conn, out.drain()); err != nil {
				// unblocks the reader
				conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		case <-out.done:
			if err := writeFrames(conn, out.drain()); err != nil {
				return
			}
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func writeFrames(conn *websocket.Conn, frames []serverFrame) error {
	for _, f := range frames {
		data, err := json.Marshal(f)
		if err != nil {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return err
		}
	}
	return nil
}

// outbox queues frames for the writer. Consecutive panels collapse into
// the newest one, navigations are never dropped.
type outbox struct {
	mu      sync.Mutex
	pending []serverFrame
	closed  bool

	ready chan struct{}
	done  chan struct{}
}

func newOutbox() *outbox {
	return &outbox{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

func (o *outbox) putPanel(p domain.SearchPanel) {
	o.put(serverFrame{Type: framePanel, Panel: &p})
}

func (o *outbox) putNavigate(url string) {
	o.put(serverFrame{Type: frameNavigate, URL: url})
}

func (o *outbox) put(f serverFrame) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if n := len(o.pending); n > 0 && f.Type == framePanel && o.pending[n-1].Type == framePanel {
		o.pending[n-1] = f
	} else {
		o.pending = append(o.pending, f)
	}
	o.mu.Unlock()

	select {
	case o.ready <- struct{}{}:
	default:
	}
}

func (o *outbox) drain() []serverFrame {
	o.mu.Lock()
	defer o.mu.Unlock()
	frames := o.pending
	o.pending = nil
	return frames
}

func (o *outbox) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.closed = true
		close(o.done)
	}
}
