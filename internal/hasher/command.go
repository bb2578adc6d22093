package hasher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long a killed tool may keep its output pipes open.
const waitDelay = 5 * time.Second

var (
	// ErrMalformedOutput is returned when the tool output has no usable hash.
	ErrMalformedOutput = errors.New("malformed hash tool output")
	// errEmptyCommand is returned when no executable is configured.
	errEmptyCommand = errors.New("hash command is empty")
)

// Hasher computes the content hash of the asset at url.
type Hasher interface {
	Hash(ctx context.Context, url string) (string, error)
}

// ArgsFunc renders the tool argv for an asset URL.
type ArgsFunc func(url string) []string

// Command runs an external executable per asset and reads a JSON object with
// a "hash" field from its standard output.
type Command struct {
	// args renders the argv, the first element is the executable.
	args ArgsFunc
	// timeout bounds a single invocation; zero means no bound.
	timeout time.Duration
}

// output is the part of the tool output the catalog needs.
type output struct {
	// Hash is the content hash, e.g. "sha256-...".
	Hash string `json:"hash"`
}

// NewCommand creates a Hasher backed by the executable rendered by args.
func NewCommand(args ArgsFunc, timeout time.Duration) *Command {
	return &Command{
		args:    args,
		timeout: timeout,
	}
}

// Hash runs the tool for url and returns the reported hash.
func (c *Command) Hash(ctx context.Context, url string) (string, error) {
	argv := c.args(url)
	if len(argv) == 0 || argv[0] == "" {
		return "", errEmptyCommand
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	//nolint:gosec // The command comes from the operator's configuration.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if message := strings.TrimSpace(stderr.String()); message != "" {
			return "", fmt.Errorf("run %s: %w: %s", argv[0], err, message)
		}

		return "", fmt.Errorf("run %s: %w", argv[0], err)
	}

	var decoded output
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	if decoded.Hash == "" {
		return "", fmt.Errorf("%w: no hash field", ErrMalformedOutput)
	}

	return decoded.Hash, nil
}
