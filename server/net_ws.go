package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"sidearena/game"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsReadLimit  = 1 << 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 演示环境：允许所有来源（生产环境需严格限制）
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientConn 绑定房间与玩家的一条 WebSocket 会话
type clientConn struct {
	ws       *websocket.Conn
	room     *Room
	playerID game.EntityID
	enc      Encoding
	sub      *Subscription
}

// HandleWS WebSocket 接入：?room=room-1&player=alice&enc=json
// 连接即加入；断开连接不移除玩家，由空闲回收或主动离开处理
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	playerID := q.Get("player")
	if playerID == "" {
		http.Error(w, "missing player query", http.StatusBadRequest)
		return
	}
	enc, err := ParseEncoding(q.Get("enc"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	room := s.rooms.GetOrCreateRoom(s.roomID(r))

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("websocket upgrade failed", "error", err)
		return
	}

	id := game.EntityID(playerID)
	room.Join(id, PlayerName(id))

	c := &clientConn{ws: ws, room: room, playerID: id, enc: enc, sub: room.Subscribe()}
	ctx, cancel := context.WithCancel(s.ctx)
	go c.writePump(ctx)
	go func() {
		defer cancel()
		c.readPump()
	}()
}

// writePump 独立协程，是连接上唯一的写方
func (c *clientConn) writePump(ctx context.Context) {
	defer func() {
		c.sub.Close()
		_ = c.ws.Close()
		if n := c.sub.Dropped(); n > 0 {
			Log.Debugw("websocket client lagged", "room", c.room.ID, "player", c.playerID, "dropped", n)
		}
	}()

	msgType := websocket.TextMessage
	if c.enc == EncodingMsgpack {
		msgType = websocket.BinaryMessage
	}

	for {
		waitCtx, cancel := context.WithTimeout(ctx, wsPingPeriod)
		ev, err := c.sub.Next(waitCtx)
		cancel()

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			// 空闲期间发送心跳
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		case err != nil:
			return
		}

		b, err := EncodeEvent(ev, c.enc)
		if err != nil {
			Log.Errorw("encode event", "room", c.room.ID, "kind", ev.Kind, "error", err)
			continue
		}
		_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.ws.WriteMessage(msgType, b); err != nil {
			return
		}
	}
}

// readPump 读取客户端消息，转换为命令与聊天
func (c *clientConn) readPump() {
	defer c.ws.Close()
	c.ws.SetReadLimit(wsReadLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(wsPongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Debugw("websocket read", "room", c.room.ID, "player", c.playerID, "error", err)
			}
			return
		}
		var im InputMessage
		if err := json.Unmarshal(payload, &im); err != nil {
			continue
		}
		switch strings.ToLower(im.Type) {
		case "command", "move":
			cmd, err := game.ParseCommand(im.Command)
			if err != nil {
				continue
			}
			if err := c.room.Submit(c.playerID, cmd); err != nil {
				Log.Debugw("command dropped", "room", c.room.ID, "player", c.playerID, "error", err)
			}
		case "chat":
			_, _ = c.room.Chat(c.playerID, im.Text)
		}
	}
}
