package judge

import (
	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/executor"
)

// DeriveStatus classifies the submission from its per-test results, in
// priority order: all passed, any timeout, any runtime failure, else Ok.
//
// A wrong answer from a clean run deliberately falls through to Ok:
// status answers "did the process misbehave", and downstream consumers
// read score/passed counts for the correctness verdict. Do not add a
// wrong-answer variant here without coordinating with those consumers.
func DeriveStatus(results []api.TestCaseResult) api.OverallStatus {
	allPassed := true
	for _, r := range results {
		if !r.Passed {
			allPassed = false
			break
		}
	}
	if allPassed {
		return api.StatusOk
	}

	for _, r := range results {
		if r.ExecutionResult.Error != nil &&
			*r.ExecutionResult.Error == executor.TimeLimitExceeded {
			return api.StatusTimeout
		}
	}
	for _, r := range results {
		if !r.ExecutionResult.Success && r.ExecutionResult.Error != nil {
			return api.StatusRuntimeError
		}
	}
	return api.StatusOk
}
