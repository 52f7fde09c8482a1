package internal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"

	"github.com/goplus/nativebuild/internal/platformtag"
)

var (
	rootDir    string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "nativebuild",
	Short: "nativebuild builds the native library of a host package",
	Long: `nativebuild runs the native build step of a host package's packaging commands:
it compiles the native source tree against an installed dependency, installs the
library into the package tree and then hands over to the packaging frontend.`,
	SilenceUsage:     true,
	TraverseChildren: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetOutputLevel(log.Ldebug)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Host package root directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <root>/nativebuild.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// Execute tags wheel builds with the host platform and runs the root
// command. This is called by main.main().
func Execute() {
	argv := platformtag.Apply(os.Args[1:], platformtag.DetectHost())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd.SetArgs(argv)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}
