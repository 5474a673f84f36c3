package domain

import (
	"fmt"
	"strings"
	"time"
)

// shortRevisionLength matches git's abbreviated commit hash.
const shortRevisionLength = 7

// VersionInfo describes the running build.
type VersionInfo struct {
	BotName       string
	Version       string
	Revision      string // Full VCS commit hash, empty when unknown
	CommitTime    time.Time
	Modified      bool // Built from a dirty working tree
	RepositoryURL string
}

// ShortRevision returns the abbreviated commit hash.
func (v VersionInfo) ShortRevision() string {
	if len(v.Revision) > shortRevisionLength {
		return v.Revision[:shortRevisionLength]
	}
	return v.Revision
}

// Description renders the version line shown to members.
func (v VersionInfo) Description() string {
	version := strings.TrimPrefix(v.Version, "v")
	if version == "" {
		version = "dev"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "I am %s v%s.", v.BotName, version)

	if v.Revision == "" {
		return sb.String()
	}

	sb.WriteString(" I am deployed from Git commit ")
	if v.RepositoryURL != "" {
		fmt.Fprintf(&sb, "[%s](%s/commit/%s)",
			v.ShortRevision(), strings.TrimSuffix(v.RepositoryURL, "/"), v.Revision)
	} else {
		sb.WriteString(v.ShortRevision())
	}
	if !v.CommitTime.IsZero() {
		fmt.Fprintf(&sb, " (%s)", v.CommitTime.UTC().Format("2006-01-02 15:04:05 -0700"))
	}
	if v.Modified {
		sb.WriteString(" with local changes")
	}
	sb.WriteString(".")

	return sb.String()
}
