package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"tagged", Info{Version: "v1.2.0", Commit: "abcdef0123"}, "v1.2.0"},
		{"untagged", Info{Commit: "abcdef0123"}, "dev-abcdef0"},
		{"dirty", Info{Commit: "abc", Dirty: true}, "dev-abc+dirty"},
		{"nothing", Info{}, "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.Short())
		})
	}
}

func TestString(t *testing.T) {
	info := Info{
		Version:   "v0.3.0",
		GoVersion: "go1.24.2",
		Platform:  "linux/amd64",
		BuildDate: time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "formwatch v0.3.0 (linux/amd64, go1.24.2) built 2026-05-04", info.String())

	got := Get()
	assert.NotEmpty(t, got.GoVersion)
	assert.NotEmpty(t, got.Short())
}
