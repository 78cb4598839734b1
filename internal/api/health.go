package api

import (
	"context"
	"strings"

	"golang.org/x/mod/semver"
)

// Health is the body of GET /api/health.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health probes the backend.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.get(ctx, "/api/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckCompatible returns *ErrIncompatibleBackend when both versions are
// valid semver and their majors differ. Development builds always pass.
func CheckCompatible(local, remote string) error {
	lv, rv := canonical(local), canonical(remote)
	if !semver.IsValid(lv) || !semver.IsValid(rv) {
		return nil
	}
	if semver.Major(lv) != semver.Major(rv) {
		return &ErrIncompatibleBackend{Local: local, Remote: remote}
	}
	return nil
}

func canonical(v string) string {
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
