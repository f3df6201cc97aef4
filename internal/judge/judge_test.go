package judge_test

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/config"
	"github.com/programme-lv/judge/internal/judge"
)

func newTestJudge(t *testing.T) *judge.Judge {
	t.Helper()
	if _, err := exec.LookPath("gcc"); err != nil {
		t.Skip("gcc not available")
	}

	cfg := config.Default()
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	cfg.ArtifactDir = filepath.Join(t.TempDir(), "artifacts")

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	j, err := judge.New(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func doublingProblem() api.Problem {
	return api.Problem{
		ID:          "double",
		Title:       "Double",
		TimeLimit:   2000,
		MemoryLimit: 256,
		TestCases: []api.TestCase{
			{Input: "2\n", ExpectedOutput: "4\n"},
			{Input: "21\n", ExpectedOutput: "42\n"},
		},
	}
}

const doublingC = `
#include <stdio.h>
int main(void) {
    int n;
    if (scanf("%d", &n) != 1) return 1;
    printf("%d\n", n * 2);
    return 0;
}
`

func TestJudgeAcceptedSubmission(t *testing.T) {
	j := newTestJudge(t)

	resp, err := j.Judge(context.Background(), api.JudgeRequest{
		Code:     doublingC,
		Language: "c",
		Problem:  doublingProblem(),
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, api.StatusOk, resp.Status)
	require.NotNil(t, resp.Result)
	require.Equal(t, 2, resp.Result.PassedTestCases)
	require.Equal(t, float64(100), resp.Result.Score)
	require.True(t, resp.Result.CompilationSuccessful)
	require.NotNil(t, resp.Result.CompileTimeMs)
	require.NotNil(t, resp.Result.ExecutableSizeBytes)
	require.Greater(t, *resp.Result.ExecutableSizeBytes, int64(0))
}

func TestJudgeWrongAnswerKeepsOkStatus(t *testing.T) {
	j := newTestJudge(t)

	tripling := `
#include <stdio.h>
int main(void) {
    int n;
    if (scanf("%d", &n) != 1) return 1;
    printf("%d\n", n * 3);
    return 0;
}
`
	resp, err := j.Judge(context.Background(), api.JudgeRequest{
		Code:     tripling,
		Language: "c",
		Problem:  doublingProblem(),
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, api.StatusOk, resp.Status)
	require.Equal(t, 0, resp.Result.PassedTestCases)
	require.Equal(t, float64(0), resp.Result.Score)
}

func TestJudgeCompileError(t *testing.T) {
	j := newTestJudge(t)

	resp, err := j.Judge(context.Background(), api.JudgeRequest{
		Code:     "int main() { this does not compile",
		Language: "c",
		Problem:  doublingProblem(),
	})
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, api.StatusCompileError, resp.Status)
	require.NotNil(t, resp.Error)
	require.Nil(t, resp.Result)
}

func TestJudgeUnsupportedLanguage(t *testing.T) {
	j := newTestJudge(t)

	resp, err := j.Judge(context.Background(), api.JudgeRequest{
		Code:     "print(1)",
		Language: "python",
		Problem:  doublingProblem(),
	})
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, api.StatusUnsupportedLanguage, resp.Status)
}

func TestJudgeTimeout(t *testing.T) {
	j := newTestJudge(t)

	looping := `
int main(void) {
    for (;;) {}
    return 0;
}
`
	problem := doublingProblem()
	problem.TimeLimit = 300

	resp, err := j.Judge(context.Background(), api.JudgeRequest{
		Code:     looping,
		Language: "c",
		Problem:  problem,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, api.StatusTimeout, resp.Status)
	require.Equal(t, 0, resp.Result.PassedTestCases)
}

func TestJudgeRuntimeError(t *testing.T) {
	j := newTestJudge(t)

	crashing := `
#include <stdio.h>
int main(void) {
    fprintf(stderr, "fatal: bad state\n");
    return 1;
}
`
	resp, err := j.Judge(context.Background(), api.JudgeRequest{
		Code:     crashing,
		Language: "c",
		Problem:  doublingProblem(),
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, api.StatusRuntimeError, resp.Status)
}

func TestJudgeCppSubmission(t *testing.T) {
	j := newTestJudge(t)
	if _, err := exec.LookPath("g++"); err != nil {
		t.Skip("g++ not available")
	}

	doublingCpp := `
#include <iostream>
int main() {
    int n;
    std::cin >> n;
    std::cout << n * 2 << "\n";
    return 0;
}
`
	resp, err := j.Judge(context.Background(), api.JudgeRequest{
		Code:     doublingCpp,
		Language: "c++",
		Problem:  doublingProblem(),
	})
	require.NoError(t, err)
	require.Equal(t, api.StatusOk, resp.Status)
	require.Equal(t, float64(100), resp.Result.Score)
}

func TestJudgeZeroTestCasesIsCallerError(t *testing.T) {
	j := newTestJudge(t)

	problem := doublingProblem()
	problem.TestCases = nil

	_, err := j.Judge(context.Background(), api.JudgeRequest{
		Code:     doublingC,
		Language: "c",
		Problem:  problem,
	})
	require.Error(t, err)
}