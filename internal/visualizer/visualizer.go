// Package visualizer answers free-text questions about a CSV dataset: a hosted
// language model writes plotting code and a remote sandbox runs it. Nothing
// the model returns is executed locally.
package visualizer

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/fileutils"
	"fjacquet/expense-insights/internal/logging"

	"golang.org/x/time/rate"
)

// PreloadImports is run in a fresh sandbox so generated code can rely on the
// usual plotting libraries.
const PreloadImports = "import pandas as pd\nimport matplotlib.pyplot as plt\nimport seaborn as sns\nimport plotly.express as px"

const (
	serviceModel   = "llm"
	serviceSandbox = "sandbox"
)

// Dataset is an uploaded file.
type Dataset struct {
	Name    string
	Content []byte
}

// Answer is the result of one question.
type Answer struct {
	Response       string     `json:"response" yaml:"response"`
	Code           string     `json:"code,omitempty" yaml:"code,omitempty"`
	HasCode        bool       `json:"has_code" yaml:"has_code"`
	Artifacts      []Artifact `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	ExecutionError string     `json:"execution_error,omitempty" yaml:"execution_error,omitempty"`
}

// Options configure a Visualizer.
type Options struct {
	RequestsPerMinute int
	ModelTimeout      time.Duration
	SandboxTimeout    time.Duration
}

// Visualizer coordinates the model and the sandbox.
type Visualizer struct {
	model   ChatModel
	sandbox Sandbox
	parser  *CodeBlockParser
	limiter *rate.Limiter
	opts    Options
	logger  logging.Logger
}

// New creates a Visualizer. A non-positive RequestsPerMinute disables
// throttling.
func New(model ChatModel, sandbox Sandbox, opts Options, logger logging.Logger) *Visualizer {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.RequestsPerMinute)
	}
	return &Visualizer{
		model:   model,
		sandbox: sandbox,
		parser:  NewCodeBlockParser("python"),
		limiter: limiter,
		opts:    opts,
		logger:  logger.WithField(logging.FieldComponent, "Visualizer"),
	}
}

// SystemPrompt builds the instructions sent with every question.
func SystemPrompt(datasetPath string) string {
	return fmt.Sprintf(`You are a data analysis agent running in a secure code interpreter.
The user's dataset is available at '%[1]s'.

Instructions for generating code:
1. Load the dataset using the path: '%[1]s'.
2. To create a visualization, generate the code for the plot using libraries like Matplotlib or Seaborn.
3. Do NOT save the plot to a file (do not use plt.savefig()).
4. The environment captures and displays the plot if it is the last thing your code generates. You do not need plt.show().

Based on the user's query, provide a Python code block that follows these rules to generate an analysis or visualization.`, datasetPath)
}

// DatasetPath is where a dataset is stored inside the sandbox.
func DatasetPath(name string) string {
	return "/" + path.Base(filepath.ToSlash(name))
}

// Ask uploads the dataset, asks the model about it and runs the returned
// code. A model answer without code, or code that fails in the sandbox, is
// not an error: the answer is returned without artifacts.
func (v *Visualizer) Ask(ctx context.Context, dataset Dataset, query string) (Answer, error) {
	if strings.TrimSpace(query) == "" {
		return Answer{}, &analyticserror.InvalidArgumentError{Argument: "query", Value: query, Reason: "must not be empty"}
	}
	if err := v.limiter.Wait(ctx); err != nil {
		return Answer{}, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	datasetPath := DatasetPath(dataset.Name)

	if _, err := v.run(ctx, "preload", PreloadImports); err != nil {
		return Answer{}, err
	}
	if err := v.upload(ctx, datasetPath, dataset.Content); err != nil {
		return Answer{}, err
	}

	response, err := v.complete(ctx, SystemPrompt(datasetPath), query)
	if err != nil {
		return Answer{}, err
	}

	answer := Answer{Response: response}
	block, ok := v.parser.Extract(response)
	if !ok {
		v.logger.Warn("Couldn't extract Python code from the model response")
		return answer, nil
	}
	answer.Code = block.Code
	answer.HasCode = true

	exec, err := v.run(ctx, "execute", block.Code)
	if err != nil {
		return Answer{}, err
	}
	if exec.Error != "" {
		v.logger.Error("Sandbox code execution failed", logging.F(logging.FieldReason, exec.Error))
		answer.ExecutionError = exec.Error
		return answer, nil
	}
	answer.Artifacts = exec.Results

	v.logger.Info("Answered dataset question",
		logging.F(logging.FieldInputFile, dataset.Name),
		logging.F(logging.FieldCount, len(answer.Artifacts)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return answer, nil
}

func (v *Visualizer) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := withTimeout(ctx, v.opts.ModelTimeout)
	defer cancel()

	response, err := v.model.Complete(ctx, system, user)
	if err != nil {
		return "", v.serviceFailure(serviceModel, "complete", err)
	}
	return response, nil
}

func (v *Visualizer) upload(ctx context.Context, datasetPath string, content []byte) error {
	ctx, cancel := withTimeout(ctx, v.opts.SandboxTimeout)
	defer cancel()

	if err := v.sandbox.WriteFile(ctx, datasetPath, content); err != nil {
		return v.serviceFailure(serviceSandbox, "upload", err)
	}
	v.logger.Debug("Uploaded dataset", logging.F("path", datasetPath), logging.F("bytes", len(content)))
	return nil
}

func (v *Visualizer) run(ctx context.Context, op, code string) (Execution, error) {
	ctx, cancel := withTimeout(ctx, v.opts.SandboxTimeout)
	defer cancel()

	exec, err := v.sandbox.RunCode(ctx, code)
	if err != nil {
		return Execution{}, v.serviceFailure(serviceSandbox, op, err)
	}
	if exec.Stderr != "" {
		v.logger.Debug("Sandbox stderr", logging.F(logging.FieldOperation, op), logging.F("stderr", exec.Stderr))
	}
	return exec, nil
}

func (v *Visualizer) serviceFailure(service, op string, err error) error {
	wrapped := &analyticserror.ServiceError{Service: service, Op: op, Err: err}
	v.logger.WithError(err).Error("External service call failed",
		logging.F(logging.FieldService, service),
		logging.F(logging.FieldOperation, op))
	return wrapped
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// SaveArtifacts writes image artifacts as PNG files and every other artifact
// as a text or JSON file under dir, returning the written paths.
func SaveArtifacts(dir string, artifacts []Artifact) ([]string, error) {
	if len(artifacts) == 0 {
		return nil, nil
	}
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for i, a := range artifacts {
		var (
			name string
			data []byte
		)
		switch {
		case a.Kind == ArtifactImage && len(a.PNG) > 0:
			name, data = fmt.Sprintf("artifact-%02d.png", i+1), a.PNG
		case len(a.Data) > 0:
			name, data = fmt.Sprintf("artifact-%02d-%s.json", i+1, a.Kind), a.Data
		case a.Text != "":
			name, data = fmt.Sprintf("artifact-%02d.txt", i+1), []byte(a.Text)
		default:
			continue
		}
		target := filepath.Join(dir, name)
		if err := fileutils.WriteFile(target, data); err != nil {
			return paths, fmt.Errorf("failed to write artifact %s: %w", name, err)
		}
		paths = append(paths, target)
	}
	return paths, nil
}
