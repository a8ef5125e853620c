package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/oklog/ulid/v2"

	"sidearena/game"
)

// Server 游戏的 HTTP 接口
type Server struct {
	ctx         context.Context
	rooms       *RoomManager
	defaultRoom string
	started     time.Time
}

// NewServer 未带 room 参数的请求进入 defaultRoom；ctx 结束时关闭事件流
func NewServer(ctx context.Context, m *RoomManager, defaultRoom string) *Server {
	if defaultRoom == "" {
		defaultRoom = "room-1"
	}
	return &Server{ctx: ctx, rooms: m, defaultRoom: defaultRoom, started: time.Now()}
}

// Routes 注册路由；static 非空时兜底提供静态资源
func (s *Server) Routes(static http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/events", s.HandleEvents)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/player/init", s.handlePlayerInit)
	mux.HandleFunc("/api/player/command", s.handlePlayerCommand)
	mux.HandleFunc("/api/player/leave", s.handlePlayerLeave)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/config/schema", s.handleConfigSchema)
	mux.HandleFunc("/metrics", s.HandleMetrics)
	mux.HandleFunc("/admin/room", s.HandleAdminRoom)
	mux.HandleFunc("/admin/kick", s.HandleAdminKick)
	if static != nil {
		mux.Handle("/", static)
	}
	return mux
}

func (s *Server) roomID(r *http.Request) string {
	if id := r.URL.Query().Get("room"); id != "" {
		return id
	}
	return s.defaultRoom
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
		"rooms":  len(s.rooms.Rooms()),
	})
}

type playerInitRequest struct {
	PlayerID string `json:"player_id"`
}

type playerInitResponse struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
}

func (s *Server) handlePlayerInit(w http.ResponseWriter, r *http.Request) {
	var req playerInitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pid := strings.TrimSpace(req.PlayerID)
	if pid == "" {
		pid = ulid.Make().String()
	}
	id := game.EntityID(pid)
	room := s.rooms.GetOrCreateRoom(s.roomID(r))
	room.Join(id, PlayerName(id))
	writeJSON(w, http.StatusOK, playerInitResponse{PlayerID: pid, Name: PlayerName(id), Color: PlayerColor(id)})
}

type playerCommandRequest struct {
	PlayerID string `json:"player_id"`
	Command  string `json:"command"`
}

func (s *Server) handlePlayerCommand(w http.ResponseWriter, r *http.Request) {
	var req playerCommandRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "missing player_id")
		return
	}
	cmd, err := game.ParseCommand(req.Command)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, err := s.rooms.Room(s.roomID(r))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := room.Submit(game.EntityID(req.PlayerID), cmd); err != nil {
		if errors.Is(err, ErrQueueFull) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type playerLeaveRequest struct {
	PlayerID string `json:"player_id"`
}

func (s *Server) handlePlayerLeave(w http.ResponseWriter, r *http.Request) {
	var req playerLeaveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	room, err := s.rooms.Room(s.roomID(r))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	removed := room.Leave(game.EntityID(req.PlayerID))
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

type chatRequest struct {
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "missing player_id")
		return
	}
	room, err := s.rooms.Room(s.roomID(r))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	msg, err := room.Chat(game.EntityID(req.PlayerID), req.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// handleConfig 返回房间配置，房间不存在时返回管理器当前配置
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.rooms.Config()
	if room, err := s.rooms.Room(s.roomID(r)); err == nil {
		cfg = room.Config()
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleConfigSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, jsonschema.Reflect(&game.Config{}))
}
