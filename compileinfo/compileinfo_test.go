package compileinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	c := fromBuildInfo(&debug.BuildInfo{
		GoVersion: "go1.18",
		Path:      "github.com/abi-sauce/treemaker/cmd/treemaker",
		Main:      debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	if c.ShortCommit() != "0123456789ab" {
		t.Errorf("short commit: got %q", c.ShortCommit())
	}

	s := c.String()
	for _, want := range []string{"cmd/treemaker v0.3.0", "go1.18", "0123456789ab (modified)", "2024-05-01"} {
		if !strings.Contains(s, want) {
			t.Errorf("%q does not contain %q", s, want)
		}
	}
}

func TestEmpty(t *testing.T) {
	var c CompileInfo
	if c.ShortCommit() != "unknown" {
		t.Errorf("got %q", c.ShortCommit())
	}
	if !strings.Contains(c.String(), "(devel)") {
		t.Errorf("got %q", c.String())
	}
}
