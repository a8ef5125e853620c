package server

import "sidearena/game"

// Input 排队中的玩家命令，由 Tick 统一应用
type Input struct {
	PlayerID game.EntityID
	Command  game.Command
}

// InputMessage 入站 WebSocket 文本消息
// 示例： {"type":"command","command":"jump"}, {"type":"chat","text":"hi"}
type InputMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Text    string `json:"text,omitempty"`
}
