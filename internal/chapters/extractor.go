package chapters

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// ExtractXML runs "mkvextract chapters <path>" and parses its stdout. A
// source with no chapters produces empty output, which is not an error:
// ExtractXML returns a nil *Data in that case.
func ExtractXML(ctx context.Context, mkvextractPath, path string) (*Data, error) {
	cmd := exec.CommandContext(ctx, mkvextractPath, "chapters", path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return nil, vsgerrors.New(err).
			Kind(vsgerrors.ExternalToolFailed).
			Context("tool", "mkvextract").
			Context("exit_code", exitCode).
			Context("stderr_tail", stderr.String()).
			Context("path", path).
			Build()
	}

	out := stdout.String()
	if strings.TrimSpace(out) == "" {
		return nil, nil
	}

	return ParseXML(out)
}
