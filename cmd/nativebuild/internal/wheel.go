package internal

import (
	"github.com/spf13/cobra"

	"github.com/goplus/nativebuild/internal/pipeline"
)

var bdistWheelCmd = &cobra.Command{
	Use:   "bdist_wheel [args...]",
	Short: "Run build, then build a wheel",
	Long: `Bdist_wheel runs build and passes its arguments to the standard wheel build.
When --plat-name is not given, the host platform tag is added.`,
	DisableFlagParsing: true,
	RunE:               runSession(pipeline.BdistWheel),
}

func init() {
	rootCmd.AddCommand(bdistWheelCmd)
}
