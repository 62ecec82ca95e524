package main

import (
	"fmt"
	"strconv"
)

const RespVersion = "0.1.0"

// Set with -ldflags "-X main.gitSHA1=... -X main.gitDirty=1 ..."
var (
	gitSHA1   string = "00000000"
	gitDirty  string = "0"
	buildID   string = "unknown"
	buildDate string = "unknown"
)

// Version is the --version string, e.g. "0.1.0 (git:1a2b3c4d-dirty)".
func Version() string {
	version := RespVersion
	// Add git commit and working tree status when available
	if sha1Int, err := strconv.ParseUint(gitSHA1, 16, 64); err == nil && sha1Int != 0 {
		version = fmt.Sprintf("%s (git:%s", version, gitSHA1)
		if dirtyInt, err := strconv.ParseInt(gitDirty, 10, 64); err == nil && dirtyInt != 0 {
			version += "-dirty"
		}
		version += ")"
	}
	if buildID != "unknown" {
		version = fmt.Sprintf("%s build=%s", version, buildID)
	}
	if buildDate != "unknown" {
		version = fmt.Sprintf("%s date=%s", version, buildDate)
	}
	return version
}
