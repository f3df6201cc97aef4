package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/judge"
)

// EngineVersion is reported by the version action.
const EngineVersion = "0.1.0"

// Dispatcher turns one raw request line into exactly one response.
// Failures of any kind are encoded in the response; the serving loop
// never crashes on a bad request.
type Dispatcher struct {
	judge  *judge.Judge
	log    *slog.Logger
	trimIO bool
}

func NewDispatcher(j *judge.Judge, log *slog.Logger) *Dispatcher {
	return &Dispatcher{judge: j, log: log}
}

// WithTrimmedIO returns a dispatcher that trims stdout/stderr previews
// in judge responses, for queue transports with message size limits.
func (d *Dispatcher) WithTrimmedIO() *Dispatcher {
	c := *d
	c.trimIO = true
	return &c
}

func (d *Dispatcher) Handle(ctx context.Context, line []byte) api.Response {
	var req api.Request
	if err := json.Unmarshal(line, &req); err != nil {
		return errResponse(nil, fmt.Sprintf("invalid request: %v", err))
	}

	switch req.Action {
	case api.ActionPing:
		return dataResponse(req.ID, "pong")

	case api.ActionVersion:
		return dataResponse(req.ID, EngineVersion)

	case api.ActionEnvCheck:
		if err := d.judge.CheckEnvironment(ctx); err != nil {
			return errResponse(req.ID, err.Error())
		}
		return api.Response{ID: req.ID, Success: true}

	case api.ActionJudge:
		if req.Request == nil {
			return errResponse(req.ID, "judge action requires a request payload")
		}
		resp, err := d.judge.Judge(ctx, *req.Request)
		if err != nil {
			return errResponse(req.ID, err.Error())
		}
		if d.trimIO {
			resp = trimResponse(resp)
		}
		return dataResponse(req.ID, resp)

	case api.ActionExecute:
		files := req.Files
		if len(files) == 0 {
			if req.Code == nil {
				return errResponse(req.ID, "either 'code' or 'files' must be provided")
			}
			files = []api.CodeFile{{
				Filename: singleFileName(req.Language),
				Content:  *req.Code,
			}}
		}
		return dataResponse(req.ID, d.judge.Execute(ctx, files, req.Language))

	default:
		return errResponse(req.ID, fmt.Sprintf("unknown action: %s", req.Action))
	}
}

func singleFileName(language string) string {
	switch strings.ToLower(language) {
	case "cpp", "c++":
		return "main.cpp"
	default:
		return "main.c"
	}
}

func dataResponse(id *string, payload any) api.Response {
	b, err := json.Marshal(payload)
	if err != nil {
		return errResponse(id, fmt.Sprintf("failed to marshal response: %v", err))
	}
	return api.Response{ID: id, Success: true, Data: b}
}

func errResponse(id *string, msg string) api.Response {
	return api.Response{ID: id, Success: false, Error: &msg}
}
