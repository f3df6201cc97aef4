package api

import "encoding/json"

// Line-delimited JSON protocol served over stdio and the queue transports.
// Each line is one Request tagged by Action; each Response echoes the
// caller-supplied correlation id.

const (
	ActionPing     = "ping"
	ActionVersion  = "version"
	ActionEnvCheck = "env_check"
	ActionJudge    = "judge"
	ActionExecute  = "execute"
)

type Request struct {
	Action string  `json:"action"`
	ID     *string `json:"id"`

	// judge action payload
	Request *JudgeRequest `json:"request,omitempty"`

	// execute action payload: either a single code string or named files
	Code     *string    `json:"code,omitempty"`
	Language string     `json:"language,omitempty"`
	Files    []CodeFile `json:"files,omitempty"`
}

type Response struct {
	ID      *string         `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *string         `json:"error"`
}
