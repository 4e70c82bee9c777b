package decoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"time"

	"replay-manager/feature/replay/models"
)

// Config holds configuration for the subprocess decoder adapter.
type Config struct {
	// Command is the decoder executable invoked per file.
	Command string `mapstructure:"command" default:"sc2decode"`
	// TimeoutSeconds bounds a single decoder invocation.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// CommandDecoder invokes an external decoder executable and maps its JSON
// output into the engine's typed structures. The mapping happens here, once,
// at the boundary.
type CommandDecoder struct {
	cfg Config
}

// NewCommandDecoder creates a subprocess decoder adapter.
func NewCommandDecoder(cfg Config) *CommandDecoder {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	return &CommandDecoder{cfg: cfg}
}

// DecodeMetadata runs `<command> metadata <path>` and parses the JSON
// metadata document from stdout.
func (d *CommandDecoder) DecodeMetadata(ctx context.Context, path string) (*models.ReplayMetadata, error) {
	out, err := d.run(ctx, path, "metadata")
	if err != nil {
		return nil, err
	}

	var meta models.ReplayMetadata
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, &DecodeError{Path: path, Reason: "malformed metadata output", Err: err}
	}
	if len(meta.Players) == 0 {
		return nil, &DecodeError{Path: path, Reason: "metadata carries no players"}
	}
	return &meta, nil
}

// DecodeEvents runs `<command> events <path>` and parses the JSON event list
// from stdout.
func (d *CommandDecoder) DecodeEvents(ctx context.Context, path string) ([]models.BuildOrderEvent, error) {
	out, err := d.run(ctx, path, "events")
	if err != nil {
		return nil, err
	}

	var events []models.BuildOrderEvent
	if err := json.Unmarshal(out, &events); err != nil {
		return nil, &DecodeError{Path: path, Reason: "malformed event output", Err: err}
	}
	return events, nil
}

func (d *CommandDecoder) run(ctx context.Context, path, mode string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(d.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.cfg.Command, mode, path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &DecodeError{Path: path, Reason: "decoder timed out", Err: err}
		}
		reason := "decoder failed"
		if msg := stderr.String(); msg != "" {
			reason = "decoder failed: " + firstLine(msg)
		}
		return nil, &DecodeError{Path: path, Reason: reason, Err: err}
	}
	return stdout.Bytes(), nil
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			return s[:i]
		}
	}
	return s
}
