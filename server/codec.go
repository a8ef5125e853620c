package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"sidearena/game"
)

// Encoding 事件流的帧格式
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingMsgpack
)

// ParseEncoding 支持 "json"（或空）与 "msgpack"
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return EncodingJSON, nil
	case "msgpack", "mp":
		return EncodingMsgpack, nil
	}
	return EncodingJSON, fmt.Errorf("unknown encoding %q", s)
}

func (e Encoding) String() string {
	if e == EncodingMsgpack {
		return "msgpack"
	}
	return "json"
}

type statePayload struct {
	Type    string        `json:"type" msgpack:"type"`
	Tick    uint64        `json:"tick" msgpack:"tick"`
	Players []PlayerState `json:"players" msgpack:"players"`
}

type departurePayload struct {
	Type       string `json:"type" msgpack:"type"`
	PlayerID   string `json:"player_id" msgpack:"player_id"`
	PlayerName string `json:"player_name" msgpack:"player_name"`
}

type chatPayload struct {
	Type        string `json:"type" msgpack:"type"`
	PlayerID    string `json:"player_id" msgpack:"player_id"`
	PlayerName  string `json:"player_name" msgpack:"player_name"`
	PlayerColor string `json:"player_color" msgpack:"player_color"`
	Text        string `json:"text" msgpack:"text"`
	Timestamp   int64  `json:"timestamp" msgpack:"timestamp"`
}

func snapshotPayload(s game.Snapshot) statePayload {
	players := make([]PlayerState, 0, len(s.Entities))
	for _, e := range s.Entities {
		players = append(players, playerState(e))
	}
	return statePayload{Type: EventSnapshot.String(), Tick: s.Tick, Players: players}
}

func eventPayload(ev Event) (any, error) {
	switch ev.Kind {
	case EventSnapshot:
		return snapshotPayload(ev.Snapshot), nil
	case EventDeparture:
		return departurePayload{
			Type:       EventDeparture.String(),
			PlayerID:   string(ev.Departure.ID),
			PlayerName: ev.Departure.Label,
		}, nil
	case EventChat:
		c := ev.Chat
		return chatPayload{
			Type:        EventChat.String(),
			PlayerID:    c.PlayerID,
			PlayerName:  c.PlayerName,
			PlayerColor: c.PlayerColor,
			Text:        c.Text,
			Timestamp:   c.Timestamp,
		}, nil
	}
	return nil, fmt.Errorf("unknown event kind %d", ev.Kind)
}

// EncodeEvent 按指定格式编码事件
func EncodeEvent(ev Event, enc Encoding) ([]byte, error) {
	payload, err := eventPayload(ev)
	if err != nil {
		return nil, err
	}
	if enc == EncodingMsgpack {
		return msgpack.Marshal(payload)
	}
	return json.Marshal(payload)
}
