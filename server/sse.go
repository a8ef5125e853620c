package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const sseHeartbeat = 15 * time.Second

// HandleEvents 以 SSE 推送房间事件：event 为事件类型，data 为 JSON 载荷
func (s *Server) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	room := s.rooms.GetOrCreateRoom(s.roomID(r))
	sub := room.Subscribe()
	defer sub.Close()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-s.ctx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		waitCtx, waitCancel := context.WithTimeout(ctx, sseHeartbeat)
		ev, err := sub.Next(waitCtx)
		waitCancel()

		switch {
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
			continue
		case err != nil:
			return
		}

		data, err := EncodeEvent(ev, EncodingJSON)
		if err != nil {
			Log.Errorw("encode event", "room", room.ID, "kind", ev.Kind, "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data); err != nil {
			return
		}
		flusher.Flush()
	}
}
