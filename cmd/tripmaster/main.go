// Command tripmaster is the entrypoint for the dash cam trip archiver.
// It loads settings, validates paths, asks for confirmation and runs the
// archive pipeline, or one of the check, failures and version subcommands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/backmassage/tripmaster/internal/config"
)

// version and commit are set at build time via -ldflags.
var (
	version = "0.3.0-dev"
	commit  = "unknown"
)

// errReported marks failures that were already logged; main exits 1
// without printing them again.
var errReported = errors.New("already reported")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "tripmaster: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags *config.Flags
	root := &cobra.Command{
		Use:   "tripmaster",
		Short: "Concatenate dash cam clips into one file per trip",
		Long: `tripmaster reads the Movie/ and EMR/ folders of a dash cam SD card, groups
the one-minute clips into trips by the gaps between them, and runs ffmpeg
once per trip. Photos are copied alongside. File timestamps are kept.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runArchive(cmd, flags)
		},
	}
	flags = config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newCheckCmd(flags),
		newFailuresCmd(flags),
		newVersionCmd(),
	)
	return root
}
