package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/backmassage/tripmaster/internal/check"
	"github.com/backmassage/tripmaster/internal/config"
	"github.com/backmassage/tripmaster/internal/display"
	"github.com/backmassage/tripmaster/internal/ffmpeg"
	"github.com/backmassage/tripmaster/internal/ledger"
	"github.com/backmassage/tripmaster/internal/logging"
)

func newCheckCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report ffmpeg, ffprobe, encoder and jpegoptim availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), flags, true)
			if err != nil {
				return err
			}
			log, err := logging.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			display.PrintBanner(os.Stdout)
			check.RunCheck(cmd.Context(), cfg, &ffmpeg.ExecRunner{}, log)
			return nil
		},
	}
}

func newFailuresCmd(flags *config.Flags) *cobra.Command {
	var all bool
	var forget []string
	cmd := &cobra.Command{
		Use:   "failures",
		Short: "List failed trips recorded in the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), flags, true)
			if err != nil {
				return err
			}
			if cfg.LedgerPath == "" {
				return fmt.Errorf("no ledger configured (use --ledger or ledger_path)")
			}
			store, err := ledger.Open(cfg.LedgerPath)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, p := range forget {
				if err := store.Delete(p); err != nil {
					return err
				}
			}

			list := store.Failures
			if all {
				list = store.List
			}
			recs, err := list()
			if err != nil {
				return err
			}
			return printRecords(cmd, recs)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List every recorded trip, not only failures")
	cmd.Flags().StringSliceVar(&forget, "forget", nil, "Remove the record for this output path first (repeatable)")
	return cmd
}

func printRecords(cmd *cobra.Command, recs []ledger.Record) error {
	if len(recs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No records.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OUTPUT\tCLIPS\tEXIT\tVERIFIED\tFINISHED\tERROR")
	for _, r := range recs {
		exit := fmt.Sprint(r.ExitCode)
		if r.Skipped {
			exit = "skipped"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%t\t%s\t%s\n",
			r.OutputPath, len(r.Inputs), exit, r.IntegrityPassed,
			r.Finished.Local().Format("2006-01-02 15:04"), r.Error)
	}
	return tw.Flush()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tripmaster %s (%s)\n", version, commit)
		},
	}
}
