package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoCapture is returned when the capture directory holds no image.
var ErrNoCapture = errors.New("no screenshot found in capture directory")

// Capturer produces one screenshot and returns its storage path.
type Capturer interface {
	Capture(ctx context.Context) (string, error)
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true}

// DirCapturer imports the newest image from a directory that an OS
// screenshot tool saves into, copying it into the screenshot store under
// a timestamped name.
type DirCapturer struct {
	// Source is the directory screenshots are picked up from.
	Source string
	// Store is the screenshot directory. Returned paths are Store joined
	// with the file name, slash separated.
	Store string
	Now   func() time.Time
}

// Capture copies the newest image in Source into Store.
func (c *DirCapturer) Capture(ctx context.Context) (string, error) {
	if c.Source == "" {
		return "", fmt.Errorf("capture directory not configured")
	}
	src, err := newestImage(c.Source)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	if err := os.MkdirAll(c.Store, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(src))
	base := "screenshot_" + now().Format("20060102_150405")
	name := base + ext
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(c.Store, name)); errors.Is(err, os.ErrNotExist) {
			break
		}
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
	}

	if err := copyFile(src, filepath.Join(c.Store, name)); err != nil {
		return "", err
	}
	return path.Join(filepath.ToSlash(c.Store), name), nil
}

func newestImage(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read capture directory: %w", err)
	}
	var newest string
	var newestMod time.Time
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest, newestMod = filepath.Join(dir, e.Name()), info.ModTime()
		}
	}
	if newest == "" {
		return "", ErrNoCapture
	}
	return newest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open screenshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create screenshot: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy screenshot: %w", err)
	}
	return out.Close()
}
