package server

import (
	"net/http"

	"sidearena/game"
)

// HandleAdminRoom 输出房间状态
// GET /admin/room?room=room-1
func (s *Server) HandleAdminRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Room(s.roomID(r))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	snap := room.Snapshot()
	players := make([]PlayerState, 0, len(snap.Entities))
	for _, e := range snap.Entities {
		players = append(players, playerState(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":         room.ID,
		"tick":         snap.Tick,
		"players":      players,
		"queued":       room.QueueLen(),
		"subscribers":  room.Subscribers(),
		"idle_timeout": room.Config().IdleTimeout,
	})
}

// HandleAdminKick 踢出玩家并广播离开事件
// POST /admin/kick?room=room-1&player=alice
func (s *Server) HandleAdminKick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	player := r.URL.Query().Get("player")
	if player == "" {
		writeError(w, http.StatusBadRequest, "missing player query")
		return
	}
	room, err := s.rooms.Room(s.roomID(r))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if !room.Leave(game.EntityID(player)) {
		writeError(w, http.StatusNotFound, "unknown player")
		return
	}
	Log.Infow("player kicked", "room", room.ID, "player", player)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Room(s.roomID(r))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    room.ID,
		"players": room.Len(),
		"metrics": room.Metrics().Snapshot(),
	})
}
