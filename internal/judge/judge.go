package judge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/compiler"
	"github.com/programme-lv/judge/internal/config"
	"github.com/programme-lv/judge/internal/executor"
	"github.com/programme-lv/judge/internal/sandbox"
)

// Judge orchestrates the compile, execute and compare pipeline for one
// submission at a time. The sandbox working directory lives as long as
// the Judge instance.
type Judge struct {
	cfg      config.Config
	log      *slog.Logger
	compiler *compiler.Compiler
	sandbox  *sandbox.Sandbox
}

func New(cfg config.Config, log *slog.Logger) (*Judge, error) {
	box, err := sandbox.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox: %w", err)
	}
	comp, err := compiler.New(cfg, log)
	if err != nil {
		_ = box.Close()
		return nil, fmt.Errorf("failed to create compiler: %w", err)
	}
	return &Judge{cfg: cfg, log: log, compiler: comp, sandbox: box}, nil
}

// Close tears down the compiler scratch space and the sandbox directory.
func (j *Judge) Close() error {
	cerr := j.compiler.Close()
	serr := j.sandbox.Close()
	if cerr != nil {
		return cerr
	}
	return serr
}

// Judge runs the full pipeline for one request. Submission-level
// failures (unsupported language, compile errors) come back encoded in
// the response; the returned error is reserved for caller mistakes such
// as a problem with zero test cases.
func (j *Judge) Judge(ctx context.Context, req api.JudgeRequest) (api.JudgeResponse, error) {
	if len(req.Problem.TestCases) == 0 {
		return api.JudgeResponse{}, fmt.Errorf(
			"problem %q has no test cases", req.Problem.ID)
	}

	j.log.Info("judging submission",
		"problem", req.Problem.ID,
		"lang", req.Language,
		"tests", len(req.Problem.TestCases))

	art, err := j.compiler.Compile(ctx, req.Code, req.Language)
	if err != nil {
		msg := err.Error()
		status := statusFromKind(compiler.KindOf(err))
		j.log.Info("submission rejected before testing",
			"problem", req.Problem.ID, "status", status)
		return api.JudgeResponse{
			Success: false,
			Error:   &msg,
			Status:  status,
		}, nil
	}

	results := make([]api.TestCaseResult, 0, len(req.Problem.TestCases))
	var totalMs int64
	passedCount := 0
	for i, tc := range req.Problem.TestCases {
		ex := executor.New(executor.Params{
			TimeLimit:      time.Duration(req.Problem.TimeLimit) * time.Millisecond,
			MemoryLimitMB:  req.Problem.MemoryLimit,
			SampleInterval: j.cfg.SampleInterval(),
			WorkDir:        j.sandbox.Dir(),
		}, j.log)

		res := ex.Execute(ctx, art.Path, []byte(tc.Input))
		totalMs += res.ExecutionTime

		passed := Normalize(res.Output, req.Normalization) ==
			Normalize(tc.ExpectedOutput, req.Normalization)
		if passed {
			passedCount++
		}
		results = append(results, api.TestCaseResult{
			TestCaseID:      i,
			Passed:          passed,
			ExecutionResult: res,
			ExpectedOutput:  tc.ExpectedOutput,
			ActualOutput:    res.Output,
		})
	}

	score := float64(passedCount) / float64(len(results)) * 100.0
	status := DeriveStatus(results)
	compileMs := art.CompileTime.Milliseconds()
	exeSize := art.SizeBytes

	j.log.Info("submission judged",
		"problem", req.Problem.ID,
		"passed", passedCount,
		"total", len(results),
		"status", status)

	return api.JudgeResponse{
		Success: true,
		Status:  status,
		Result: &api.SubmissionResult{
			ProblemID:             req.Problem.ID,
			TotalTestCases:        len(results),
			PassedTestCases:       passedCount,
			TestCaseResults:       results,
			CompilationSuccessful: true,
			TotalExecutionTime:    totalMs,
			Score:                 score,
			CompileTimeMs:         &compileMs,
			ExecutableSizeBytes:   &exeSize,
		},
	}, nil
}

// Execute builds one or more files for interactive use without running
// any test cases.
func (j *Judge) Execute(ctx context.Context, files []api.CodeFile, language string) api.CompileResult {
	art, err := j.compiler.BuildProject(ctx, files, language)
	if err != nil {
		msg := err.Error()
		return api.CompileResult{Success: false, Error: &msg}
	}
	path := art.Path
	return api.CompileResult{
		Success:        true,
		ExecutablePath: &path,
		CompileTimeMs:  art.CompileTime.Milliseconds(),
	}
}

// CheckEnvironment is a readiness probe; it is not part of the
// judge-request path.
func (j *Judge) CheckEnvironment(ctx context.Context) error {
	return j.compiler.CheckToolchain(ctx)
}

func statusFromKind(k compiler.Kind) api.OverallStatus {
	switch k {
	case compiler.KindUnsupportedLanguage:
		return api.StatusUnsupportedLanguage
	case compiler.KindEnv:
		return api.StatusEnvError
	default:
		return api.StatusCompileError
	}
}
