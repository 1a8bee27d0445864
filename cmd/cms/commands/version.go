package commands

import (
	"io"
	"runtime"
	"strings"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// VersionInfo is the build and wire-protocol information printed by `cms version`.
type VersionInfo struct {
	Version   string `json:"version"     yaml:"version"`
	Commit    string `json:"commit"      yaml:"commit"`
	Built     string `json:"built"       yaml:"built"`
	GoVersion string `json:"go_version"  yaml:"go_version"`
	API       string `json:"api_version" yaml:"api_version"`
}

func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Long:  "Print the CLI build, the Go toolchain it was built with and the content API version it speaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := VersionInfo{
				Version:   version,
				Commit:    commit,
				Built:     date,
				GoVersion: runtime.Version(),
				API:       strings.Trim(strings.TrimPrefix(constants.APIBasePath, "/api"), "/"),
			}

			return renderOutput(cmd.OutOrStdout(), info, func(w io.Writer) error {
				table := tablewriter.NewWriter(w)
				table.Header("Build", "")
				_ = table.Append("cms", info.Version)
				_ = table.Append("commit", info.Commit)
				_ = table.Append("built", info.Built)
				_ = table.Append("go", info.GoVersion)
				_ = table.Append("content API", info.API)

				return table.Render()
			})
		},
	}
}
