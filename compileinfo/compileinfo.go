// Package compileinfo reports how a treemaker binary was built, from the
// build information the Go toolchain embeds.
package compileinfo

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

type CompileInfo struct {
	Package    string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

// ShortCommit is the first 12 characters of the commit hash, or "unknown".
func (c CompileInfo) ShortCommit() string {
	switch {
	case c.Commit == "":
		return "unknown"
	case len(c.Commit) > 12:
		return c.Commit[:12]
	}
	return c.Commit
}

func (c CompileInfo) String() string {
	mod := ""
	if c.Modified {
		mod = " (modified)"
	}

	version := c.Version
	if version == "" {
		version = "(devel)"
	}

	return fmt.Sprintf("%s %s built with %s at commit %s%s, %s", c.Package, version, c.GoVersion, c.ShortCommit(), mod, c.CommitTime)
}

func Get() CompileInfo {
	z, ok := debug.ReadBuildInfo()
	if !ok {
		return CompileInfo{}
	}

	return fromBuildInfo(z)
}

func fromBuildInfo(z *debug.BuildInfo) CompileInfo {
	out := CompileInfo{
		GoVersion: z.GoVersion,
		Package:   z.Path,
		Version:   z.Main.Version,
	}

	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

func Fprint(w io.Writer) {
	fmt.Fprintln(w, Get())
}

func PrintToStdErr() {
	Fprint(os.Stderr)
}
