package internal

import (
	"github.com/spf13/cobra"

	"github.com/goplus/nativebuild/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the native library, then run the standard build",
	Long: `Build resolves the native dependency, runs make (nmake on windows) in the native
source tree and replaces the library directory of the package with the result.`,
	Args: cobra.NoArgs,
	RunE: runSession(pipeline.Build),
}

var developCmd = &cobra.Command{
	Use:   "develop",
	Short: "Run build, then the standard develop command",
	Args:  cobra.NoArgs,
	RunE:  runSession(pipeline.Develop),
}

var editableWheelCmd = &cobra.Command{
	Use:   "editable_wheel",
	Short: "Run build, then the standard editable install",
	Args:  cobra.NoArgs,
	RunE:  runSession(pipeline.EditableWheel),
}

func init() {
	rootCmd.AddCommand(buildCmd, developCmd, editableWheelCmd)
}
