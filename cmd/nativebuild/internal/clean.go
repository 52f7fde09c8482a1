package internal

import (
	"github.com/spf13/cobra"

	"github.com/goplus/nativebuild/internal/pipeline"
)

var cleanNativeCmd = &cobra.Command{
	Use:   "clean_native",
	Short: "Remove native build byproducts",
	Long:  `Clean_native removes *.o, *.obj, *.so, *.dll and *.dylib files from the native source tree.`,
	Args:  cobra.NoArgs,
	RunE:  runSession(pipeline.CleanNative),
}

func init() {
	rootCmd.AddCommand(cleanNativeCmd)
}
