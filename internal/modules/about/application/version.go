package application

import (
	"runtime/debug"
	"time"

	"github.com/sglre6355/jukebot/internal/modules/about/domain"
)

// BuildInfoReader returns the build information embedded in the binary.
type BuildInfoReader func() (*debug.BuildInfo, bool)

// VersionInteractor handles the version use case.
type VersionInteractor struct {
	botName       string
	version       string
	repositoryURL string
	readBuildInfo BuildInfoReader
}

// NewVersionInteractor creates a new VersionInteractor.
// version is the version stamped at link time; it wins over the module version.
func NewVersionInteractor(
	botName, version, repositoryURL string,
	readBuildInfo BuildInfoReader,
) *VersionInteractor {
	if readBuildInfo == nil {
		readBuildInfo = debug.ReadBuildInfo
	}
	return &VersionInteractor{
		botName:       botName,
		version:       version,
		repositoryURL: repositoryURL,
		readBuildInfo: readBuildInfo,
	}
}

// Execute collects the version information of the running binary.
func (v *VersionInteractor) Execute() domain.VersionInfo {
	info := domain.VersionInfo{
		BotName:       v.botName,
		Version:       v.version,
		RepositoryURL: v.repositoryURL,
	}

	build, ok := v.readBuildInfo()
	if !ok {
		return info
	}

	if (info.Version == "" || info.Version == "dev") && build.Main.Version != "(devel)" {
		info.Version = build.Main.Version
	}

	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
				info.CommitTime = t
			}
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}

	return info
}
