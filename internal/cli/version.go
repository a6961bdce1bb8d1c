// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// VersionInfo is the JSON form of the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func currentVersion() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        noArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(*cobra.Command, []string) error {
			info := currentVersion()
			return OutputJSON(a.stdout, a.jsonMode, "version", func() (interface{}, error) {
				if !a.jsonMode {
					fmt.Fprintf(a.stdout, "picomenu %s (commit %s, built %s, %s %s)\n",
						info.Version, info.GitCommit, info.BuildDate, info.GoVersion, info.Platform)
				}
				return info, nil
			})
		},
	}
}
