// Package monitor serves a live view of a running solve's progress over a
// websocket: iteration count, accuracy and the adaptive control bounds.
// Adapted from the teacher's single-page, single-client websocket server —
// trimmed to one JSON snapshot stream instead of a templated cell-grid view,
// since a scalar solve has no spatial grid worth rendering.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"github.com/sirupsen/logrus"
)

const (
	writeWait        = 1 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	closeGracePeriod = 10 * time.Second
)

// Progress is one iteration's published snapshot.
type Progress struct {
	Iteration int     `json:"iteration"`
	Acc       float64 `json:"acc"`
	QMax      float64 `json:"qmax"`
	SMax      float64 `json:"smax"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server serves a single HTML page and a websocket endpoint that streams
// Progress snapshots as they arrive on its updates channel.
type Server struct {
	addr    string
	updates <-chan Progress
	log     *logrus.Logger

	last Progress
}

// New returns a Server that reads progress snapshots from updates and
// serves them at addr.
func New(addr string, updates <-chan Progress, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{addr: addr, updates: updates, log: log}
}

// Serve blocks, running the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	r := mux.NewRouter()
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket)

	srv := &http.Server{Addr: s.addr, Handler: r}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("monitor: websocket upgrade failed")
		return
	}
	defer closeWebsocket(ws)
	s.publish(r.Context(), ws)
}

func (s *Server) publish(ctx context.Context, ws *websocket.Conn) {
	pubCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pinger := channerics.NewTicker(pubCtx.Done(), pingPeriod)

	for {
		select {
		case <-pubCtx.Done():
			return
		case <-pinger:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case p, ok := <-s.updates:
			if !ok {
				return
			}
			s.last = p
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := ws.WriteJSON(p); err != nil {
				return
			}
		}
	}
}

func closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.Close()
}

// Publish sends p on updates without blocking the caller, dropping the
// update if the channel's single slot is already full — progress snapshots
// are superseded by the next one anyway, so a stalled subscriber should
// never back-pressure the solver loop.
func Publish(updates chan<- Progress, p Progress) {
	select {
	case updates <- p:
	default:
	}
}

// Encode is exposed for tests that want to confirm a Progress value
// round-trips through the same JSON encoding the websocket uses.
func Encode(p Progress) ([]byte, error) {
	return json.Marshal(p)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>radsolve monitor</title></head>
<body>
<pre id="progress">waiting for first iteration...</pre>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => {
  document.getElementById("progress").textContent = ev.data;
};
</script>
</body>
</html>`
