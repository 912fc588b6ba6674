package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"lyricvid/internal/config"
	"lyricvid/internal/deps"
	"lyricvid/internal/overlay"
)

// CheckImageEndpoint verifies that the image generation host answers HTTP.
// Any response below 500 counts as reachable; prompts are not submitted.
func CheckImageEndpoint(ctx context.Context, baseURL string) Result {
	const name = "Image endpoint"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeHTTPError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("%s (server error %d)", base, resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", base)}
}

// fontSample spans ascenders and descenders.
const fontSample = "Ag"

// CheckFont verifies that the configured overlay font loads at the configured
// size and renders visible glyphs.
func CheckFont(cfg config.Overlay) Result {
	const name = "Overlay font"

	label := strings.TrimSpace(cfg.FontPath)
	if label == "" {
		label = "bundled Go Regular"
	}
	face, err := overlay.LoadFace(cfg.FontPath, cfg.FontSize)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", label, err)}
	}
	defer face.Close()
	width, height := overlay.Measure(face, fontSample)
	if width == 0 || height == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: renders no glyphs for %q)", label, fontSample)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%.0fpt, %dpx line height)", label, cfg.FontSize, height)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries a render shells out to.
// Both the pipeline and the CLI check command use this so the requirements
// list lives in one place.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.RenderRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
}

func summarizeHTTPError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "reachability check timed out (endpoint unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "reachability check timed out (endpoint unreachable)"
	}
	return err.Error()
}
