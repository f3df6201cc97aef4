package api

// OverallStatus classifies how the submission's processes behaved.
// It answers "did the process misbehave", not "did the submission pass":
// a clean run with wrong output keeps StatusOk while score stays below 100.
type OverallStatus string

const (
	StatusOk                  OverallStatus = "ok"
	StatusCompileError        OverallStatus = "compile_error"
	StatusRuntimeError        OverallStatus = "runtime_error"
	StatusTimeout             OverallStatus = "timeout"
	StatusUnsupportedLanguage OverallStatus = "unsupported_language"
	StatusEnvError            OverallStatus = "env_error"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// TestCase is one (input, expected output) pair a submission is scored
// against. Order within the problem is significant; it defines the test id.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	IsHidden       bool   `json:"is_hidden"`
}

type Problem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	TimeLimit   int64      `json:"time_limit"`   // per test, milliseconds
	MemoryLimit int64      `json:"memory_limit"` // MB, informational
	TestCases   []TestCase `json:"test_cases"`
	Tags        []string   `json:"tags"`
}

// NormalizationOptions control output comparison. Both default to off,
// which still trims each line and the joined result.
type NormalizationOptions struct {
	NormalizeCRLF         bool `json:"normalize_crlf"`
	IgnoreExtraWhitespace bool `json:"ignore_extra_whitespace"`
}

// CodeFile is one named source file in a multi-file build.
type CodeFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type JudgeRequest struct {
	Code          string               `json:"code"`
	Problem       Problem              `json:"problem"`
	Language      string               `json:"language"` // "c", "cpp", "c++"
	Normalization NormalizationOptions `json:"normalization"`
}

// ExecutionResult is the outcome of running the executable against one
// test input. The target program's own failures are encoded here, never
// surfaced as engine errors.
type ExecutionResult struct {
	Success       bool    `json:"success"`
	Output        string  `json:"output"`
	Error         *string `json:"error"`
	ExecutionTime int64   `json:"execution_time"` // milliseconds, wall clock
	MemoryUsage   int64   `json:"memory_usage"`   // peak sampled RSS, KiB
}

type TestCaseResult struct {
	TestCaseID      int             `json:"test_case_id"`
	Passed          bool            `json:"passed"`
	ExecutionResult ExecutionResult `json:"execution_result"`
	ExpectedOutput  string          `json:"expected_output"`
	ActualOutput    string          `json:"actual_output"`
}

type SubmissionResult struct {
	ProblemID             string           `json:"problem_id"`
	TotalTestCases        int              `json:"total_test_cases"`
	PassedTestCases       int              `json:"passed_test_cases"`
	TestCaseResults       []TestCaseResult `json:"test_case_results"`
	CompilationSuccessful bool             `json:"compilation_successful"`
	CompilationError      *string          `json:"compilation_error"`
	TotalExecutionTime    int64            `json:"total_execution_time"`
	Score                 float64          `json:"score"` // passed/total * 100
	CompileTimeMs         *int64           `json:"compile_time_ms"`
	ExecutableSizeBytes   *int64           `json:"executable_size_bytes"`
}

type JudgeResponse struct {
	Success bool              `json:"success"`
	Result  *SubmissionResult `json:"result"`
	Error   *string           `json:"error"`
	Status  OverallStatus     `json:"status"`
}

// CompileResult is the payload of the interactive "execute" action:
// a build without any test runs.
type CompileResult struct {
	Success        bool    `json:"success"`
	ExecutablePath *string `json:"executable_path"`
	Error          *string `json:"error"`
	CompileTimeMs  int64   `json:"compile_time_ms"`
}
