package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/christopherklint97/kalendr/internal/assistant"
)

// cleanEnv returns os.Environ() with Claude Code session vars removed
// so the subprocess doesn't get blocked by the nested-session check.
func cleanEnv() []string {
	blocked := map[string]bool{
		"CLAUDECODE":             true,
		"CLAUDE_CODE_ENTRYPOINT": true,
	}
	var env []string
	for _, e := range os.Environ() {
		key, _, _ := strings.Cut(e, "=")
		if !blocked[key] {
			env = append(env, e)
		}
	}
	return env
}

// ClaudeCLI answers through a local `claude` binary in print mode.
type ClaudeCLI struct {
	Model  string
	Binary string
	logger *slog.Logger
}

func NewClaudeCLI(model string, logger *slog.Logger) *ClaudeCLI {
	if model == "" {
		model = "haiku"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ClaudeCLI{Model: model, Binary: "claude", logger: logger}
}

func (c *ClaudeCLI) Name() string { return "claude-cli" }

func (c *ClaudeCLI) Respond(ctx context.Context, req Request) (*assistant.Response, error) {
	systemPrompt := buildSystemPrompt(req)
	userPrompt := buildUserPrompt(req)

	args := []string{
		"-p", userPrompt,
		"--output-format", "json",
		"--model", c.Model,
		"--system-prompt", systemPrompt,
		"--json-schema", jsonSchema,
		"--no-session-persistence",
	}

	c.logger.Debug("invoking claude CLI",
		"model", c.Model,
		"events", len(req.Events),
		"history", len(req.History),
		"system_prompt_len", len(systemPrompt),
		"user_prompt_len", len(userPrompt),
	)

	result, err := c.runCLI(ctx, args)
	if err != nil {
		return nil, err
	}

	resp, err := decodeResponse(result)
	if err != nil {
		c.logger.Error("failed to parse claude response", "error", err, "raw", truncateStr(result, 2000))
		return nil, err
	}
	return resp, nil
}

// runCLI runs the CLI and unwraps the --output-format json envelope.
func (c *ClaudeCLI) runCLI(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Binary, args...)
	cmd.Env = cleanEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startTime := time.Now()
	err := cmd.Run()
	elapsed := time.Since(startTime)

	c.logger.Debug("claude CLI finished",
		"elapsed", elapsed,
		"stdout_bytes", stdout.Len(),
		"stderr_bytes", stderr.Len(),
		"error", err,
	)

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("claude CLI timed out after %s", elapsed.Truncate(time.Second))
		}
		return "", fmt.Errorf("running claude CLI: %w (stderr: %s)", err, truncateStr(stderr.String(), 500))
	}

	return unwrapEnvelope(stdout.Bytes()), nil
}

// unwrapEnvelope prefers structured_output (typed JSON from --json-schema)
// over result, and returns the raw output when neither is usable.
func unwrapEnvelope(out []byte) string {
	var wrapper struct {
		Result           json.RawMessage `json:"result"`
		StructuredOutput json.RawMessage `json:"structured_output"`
	}
	if err := json.Unmarshal(out, &wrapper); err != nil {
		return string(out)
	}

	if len(wrapper.StructuredOutput) > 0 && wrapper.StructuredOutput[0] == '{' {
		return string(wrapper.StructuredOutput)
	}
	if len(wrapper.Result) > 0 {
		var s string
		if err := json.Unmarshal(wrapper.Result, &s); err == nil && s != "" {
			return s
		}
		if wrapper.Result[0] == '{' {
			return string(wrapper.Result)
		}
	}
	return string(out)
}
