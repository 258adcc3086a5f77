// Package preview streams the globe to a browser over websockets and lets
// the browser stand in for the companion app and the accelerometer.
package preview

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreman2200/funtimes-snowglobe/internal/command"
	"github.com/coreman2200/funtimes-snowglobe/internal/globe"
	"github.com/coreman2200/funtimes-snowglobe/internal/link"
	"github.com/coreman2200/funtimes-snowglobe/internal/motion"
	"github.com/coreman2200/funtimes-snowglobe/model"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// DefaultThrottle caps display frames sent to browsers at about 10 per second.
const DefaultThrottle = 100 * time.Millisecond

type Server struct {
	mu          sync.RWMutex
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	writeMu     sync.Mutex

	// Pipe and Sensor receive control messages; either may be nil when the
	// globe runs on real hardware.
	Pipe   *link.Pipe
	Sensor *motion.Sim

	Throttle time.Duration
	lastEmit time.Time

	frameID   uint64
	startTime time.Time
	last      globe.Snapshot
}

func NewServer(pipe *link.Pipe, sensor *motion.Sim) *Server {
	return &Server{
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		Pipe:        pipe,
		Sensor:      sensor,
		Throttle:    DefaultThrottle,
		startTime:   time.Now(),
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// Attach streams every draw on d as it happens, so ring animations that
// block the loop still reach the browser.
func (s *Server) Attach(d *Drawer) {
	d.setOnDraw(func(name string, img *image.NRGBA) {
		s.broadcast(map[string]any{
			"kind": name,
			"t":    time.Now().UnixNano(),
			"rgb":  base64.StdEncoding.EncodeToString(rgb(img)),
			"w":    img.Rect.Dx(),
			"h":    img.Rect.Dy(),
		}, s.clients)
	})
}

type frame struct {
	T        int64          `json:"t"`
	FrameID  uint64         `json:"frame_id"`
	State    string         `json:"state"`
	Ring     string         `json:"ring"`
	Display  string         `json:"display"`
	Landings int            `json:"landings"`
	Resets   int            `json:"resets"`
	Settings map[string]any `json:"settings"`
}

// Ready reports whether a Publish now would reach anyone, so callers can
// skip building a snapshot.
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients) > 0 && !s.lastEmit.Add(s.Throttle).After(time.Now())
}

// Publish sends one globe frame to /ws subscribers, dropping frames that
// arrive faster than Throttle.
func (s *Server) Publish(snap globe.Snapshot) {
	s.mu.Lock()
	s.last = snap
	s.frameID++
	now := time.Now()
	if s.lastEmit.Add(s.Throttle).After(now) || len(s.clients) == 0 || snap.Display == nil {
		s.mu.Unlock()
		return
	}
	s.lastEmit = now
	id := s.frameID
	s.mu.Unlock()

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, snap.Display); err != nil {
		log.Debug().Err(err).Msg("encode preview frame")
		return
	}
	s.broadcast(frame{
		T:        now.UnixNano(),
		FrameID:  id,
		State:    snap.State.String(),
		Ring:     base64.StdEncoding.EncodeToString(rgb(snap.Ring)),
		Display:  base64.StdEncoding.EncodeToString(pngBuf.Bytes()),
		Landings: snap.Landings,
		Resets:   snap.Resets,
		Settings: settingsJSON(snap),
	}, s.clients)
}

func settingsJSON(snap globe.Snapshot) map[string]any {
	return map[string]any{
		"animation":   snap.Settings.Animation.String(),
		"duration_ms": snap.Settings.Duration.Milliseconds(),
		"interval_ms": snap.Settings.Interval.Milliseconds(),
		"color":       fmt.Sprintf("#%06X", snap.Settings.Color.Color()),
		"shake":       snap.Settings.Shake,
	}
}

// StateChanged is a globe.OnState hook.
func (s *Server) StateChanged(from, to globe.State) {
	s.Push(Diagnostic{
		Severity: Info,
		Code:     "STATE." + to.String(),
		Summary:  "link " + to.String(),
		Evidence: map[string]any{"from": from.String()},
	})
}

// Fault is a globe.OnFault hook. The link retries on its own, so its
// failures are warnings; a display that stops taking frames is an error.
func (s *Server) Fault(part string, err error) {
	sev := Warn
	if part == "display" {
		sev = Err
	}
	s.Push(Diagnostic{
		Severity: sev,
		Code:     strings.ToUpper(part) + ".FAULT",
		Summary:  part + " failed",
		Detail:   err.Error(),
	})
}

func (s *Server) Push(d Diagnostic) {
	s.broadcast(d, s.diagClients)
}

func (s *Server) broadcast(v any, set map[*websocket.Conn]bool) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write preview")
		}
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request, set map[*websocket.Conn]bool) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	set[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(set, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	s.subscribe(w, r, s.clients)
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	s.subscribe(w, r, s.diagClients)
}

// Control is one message on /control.
type Control struct {
	Type    string `json:"type"` // color | button | raw | connect | shake
	R       uint8  `json:"r,omitempty"`
	G       uint8  `json:"g,omitempty"`
	B       uint8  `json:"b,omitempty"`
	Button  string `json:"button,omitempty"`
	Pressed *bool  `json:"pressed,omitempty"`
	Hex     string `json:"hex,omitempty"`
	On      bool   `json:"on,omitempty"`
	Samples int    `json:"samples,omitempty"`
}

type reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Control
		res := reply{OK: true}
		if err := json.Unmarshal(data, &msg); err != nil {
			res = reply{Error: err.Error()}
		} else if err := s.Apply(msg); err != nil {
			res = reply{Error: err.Error()}
		}
		b, _ := json.Marshal(res)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

var buttons = map[string]command.Button{
	"1": command.Button1, "2": command.Button2, "3": command.Button3, "4": command.Button4,
	"up": command.Up, "down": command.Down, "left": command.Left, "right": command.Right,
}

// Apply acts on a control message the way the app or a hand would.
func (s *Server) Apply(c Control) error {
	switch c.Type {
	case "connect":
		if s.Pipe == nil {
			return errors.New("link is not simulated")
		}
		s.Pipe.SetConnected(c.On)
	case "color", "button", "raw":
		if s.Pipe == nil {
			return errors.New("link is not simulated")
		}
		if !s.Pipe.Connected() {
			return errors.New("not connected")
		}
		b, err := packetBytes(c)
		if err != nil {
			return err
		}
		s.Pipe.Feed(b)
	case "shake":
		if s.Sensor == nil {
			return errors.New("sensor is not simulated")
		}
		n := c.Samples
		if n <= 0 {
			n = 5
		}
		s.Sensor.Jolt(n)
	default:
		return fmt.Errorf("unknown control %q", c.Type)
	}
	return nil
}

func packetBytes(c Control) ([]byte, error) {
	switch c.Type {
	case "color":
		return command.Encode(command.NewColor(model.NewRGB(c.R, c.G, c.B))), nil
	case "button":
		b, ok := buttons[c.Button]
		if !ok {
			return nil, fmt.Errorf("unknown button %q", c.Button)
		}
		pressed := c.Pressed == nil || *c.Pressed
		return command.Encode(command.NewButton(b, pressed)), nil
	default:
		return hex.DecodeString(c.Hex)
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"state":    s.last.State.String(),
		"frames":   s.last.Frame,
		"landings": s.last.Landings,
		"resets":   s.last.Resets,
		"shakes":   s.last.Shakes,
		"clients":  len(s.clients),

		"link_dropped":   s.last.LinkDropped,
		"packet_dropped": s.last.PacketDropped,
	}
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func rgb(img *image.NRGBA) []byte {
	if img == nil {
		return nil
	}
	out := make([]byte, 0, len(img.Pix)/4*3)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		out = append(out, img.Pix[i], img.Pix[i+1], img.Pix[i+2])
	}
	return out
}
