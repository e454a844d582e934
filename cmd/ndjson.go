package cmd

import (
	"encoding/json"
	"io"
	"runtime"
	"strings"
	"time"
)

type ndjsonEvent struct {
	Timestamp  string         `json:"timestamp"`
	Level      string         `json:"level"`
	Event      string         `json:"event"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
}

func emitNDJSON(w io.Writer, level, event, message string, details map[string]any, suggestion string) {
	if w == nil {
		return
	}
	e := ndjsonEvent{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Level:      level,
		Event:      event,
		Message:    message,
		Details:    details,
		Suggestion: suggestion,
	}
	buf, err := json.Marshal(e)
	if err != nil {
		fallback, _ := json.Marshal(ndjsonEvent{
			Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
			Level:      "error",
			Event:      "logger_error",
			Message:    "failed to encode NDJSON event",
			Details:    map[string]any{"reason": err.Error()},
			Suggestion: "check that event details only hold JSON-encodable values",
		})
		_, _ = w.Write(append(fallback, '\n'))
		return
	}
	_, _ = w.Write(append(buf, '\n'))
}

type tracer func(level, event, message string, details map[string]any)

// newTracer returns a no-op unless trace output was requested, so stderr
// normally carries only the delegate's output and one-line diagnostics.
func newTracer(w io.Writer, enabled bool) tracer {
	if !enabled {
		return func(string, string, string, map[string]any) {}
	}
	return func(level, event, message string, details map[string]any) {
		suggestion := ""
		if level == "error" {
			if text, ok := details["error"].(string); ok {
				suggestion = suggestionForFailure(text)
			}
		}
		emitNDJSON(w, level, event, message, details, suggestion)
	}
}

func suggestionForFailure(reason string) string {
	switch {
	case strings.HasPrefix(reason, "Failed to load markmap-cli"):
		return "install markmap-cli (" + installHint(runtime.GOOS) + ") or point MARKMAP_WRAPPER_BIN at the markmap executable"
	case strings.HasPrefix(reason, "Failed to execute markmap"):
		if strings.Contains(reason, "node runtime not found") {
			return "install Node.js or set MARKMAP_WRAPPER_NODE to the node executable"
		}
		return "rebuild the bundle or set MARKMAP_WRAPPER_BUNDLE to a CommonJS file exporting main()"
	default:
		return "run markmap directly with the same arguments to see the full error"
	}
}

func suggestionForTopError(errText string) string {
	lower := strings.ToLower(errText)
	switch {
	case strings.Contains(errText, "unknown delegate strategy"):
		return "set MARKMAP_WRAPPER_STRATEGY to bundled or library, or unset it to use the build default"
	case strings.Contains(errText, "markmap-wrapper.yaml"):
		return "fix the YAML syntax of markmap-wrapper.yaml next to the executable, or remove the file"
	case strings.Contains(lower, "permission denied"):
		return "check file permissions of the wrapper and its configuration"
	default:
		return "check the error details; verify configuration and environment, then retry"
	}
}

func installHint(goos string) string {
	switch goos {
	case "windows":
		return "npm install -g markmap-cli, then reopen the terminal so PATH is refreshed"
	default:
		return "npm install -g markmap-cli"
	}
}

func EmitUnhandledError(w io.Writer, err error) {
	if err == nil {
		return
	}
	emitNDJSON(w, "error", "fatal_error", "markmap-wrapper failed", map[string]any{
		"error": err.Error(),
	}, suggestionForTopError(err.Error()))
}
