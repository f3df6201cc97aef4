package rpc

import (
	"strings"

	"github.com/programme-lv/judge/api"
)

// Preview rectangle for outputs carried over queue transports. The full
// text stays in the in-process result; only the message payload is cut.
const (
	maxIOHeight = 40
	maxIOWidth  = 80
)

func trimResponse(resp api.JudgeResponse) api.JudgeResponse {
	if resp.Result == nil {
		return resp
	}
	result := *resp.Result
	trimmed := make([]api.TestCaseResult, len(result.TestCaseResults))
	for i, tr := range result.TestCaseResults {
		tr.ExpectedOutput = trimStrToRect(tr.ExpectedOutput, maxIOHeight, maxIOWidth)
		tr.ActualOutput = trimStrToRect(tr.ActualOutput, maxIOHeight, maxIOWidth)
		tr.ExecutionResult.Output = trimStrToRect(tr.ExecutionResult.Output, maxIOHeight, maxIOWidth)
		if tr.ExecutionResult.Error != nil {
			e := trimStrToRect(*tr.ExecutionResult.Error, maxIOHeight, maxIOWidth)
			tr.ExecutionResult.Error = &e
		}
		trimmed[i] = tr
	}
	result.TestCaseResults = trimmed
	resp.Result = &result
	return resp
}

func trimStrToRect(s string, maxHeight int, maxWidth int) string {
	res := ""
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
		lines = append(lines, "[...]")
	}
	for i, line := range lines {
		if i > 0 {
			res += "\n"
		}
		if len(line) > maxWidth {
			res += line[:maxWidth] + "[...]"
		} else {
			res += line
		}
	}
	return res
}
