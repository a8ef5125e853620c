package server

import (
	"errors"
	"strings"
	"unicode/utf8"

	"sidearena/game"
)

const maxChatRunes = 280

// ErrEmptyChat 空白聊天消息
var ErrEmptyChat = errors.New("empty chat message")

// ChatMessage 转发的聊天消息
type ChatMessage struct {
	PlayerID    string `json:"player_id" msgpack:"player_id"`
	PlayerName  string `json:"player_name" msgpack:"player_name"`
	PlayerColor string `json:"player_color" msgpack:"player_color"`
	Text        string `json:"text" msgpack:"text"`
	Timestamp   int64  `json:"timestamp" msgpack:"timestamp"`
}

// Chat 将 id 的消息转发给所有订阅者，并计为活跃
// 不在房间内的玩家使用兜底名称
func (r *Room) Chat(id game.EntityID, text string) (ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ErrEmptyChat
	}
	if utf8.RuneCountInString(text) > maxChatRunes {
		text = string([]rune(text)[:maxChatRunes])
	}

	now := r.opts.Clock()
	r.mu.Lock()
	r.world.Touch(id, now)
	e, ok := r.world.Get(id)
	r.mu.Unlock()

	msg := ChatMessage{
		PlayerID:  string(id),
		Text:      text,
		Timestamp: now.Unix(),
	}
	if ok {
		msg.PlayerName = e.Label
		msg.PlayerColor = PlayerColor(id)
	} else {
		short := string(id)
		if len(short) > 8 {
			short = short[:8]
		}
		msg.PlayerName = "Player-" + short
		msg.PlayerColor = "#FFFFFF"
	}

	r.metrics.IncChat()
	Log.Debugw("chat", "room", r.ID, "player", id, "name", msg.PlayerName, "text", text)
	r.hub.Publish(Event{Kind: EventChat, Chat: msg})
	return msg, nil
}
