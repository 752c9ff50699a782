package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"matric-memory/internal/jobs"
)

var pauseArchive string

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause job processing, globally or for one archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPause(cmd, true)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume job processing, globally or for one archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPause(cmd, false)
	},
}

func init() {
	pauseCmd.Flags().StringVar(&pauseArchive, "archive", "", "archive schema to pause (default: pause globally)")
	resumeCmd.Flags().StringVar(&pauseArchive, "archive", "", "archive schema to resume (default: resume globally)")
}

func setPause(cmd *cobra.Command, paused bool) error {
	ctx := cmd.Context()
	pool, _, err := connectPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	pause := jobs.NewPauseState(pool)
	if err := pause.Load(ctx); err != nil {
		return fmt.Errorf("load pause state: %w", err)
	}

	if pauseArchive != "" {
		if err := pause.SetArchivePaused(ctx, pauseArchive, paused); err != nil {
			return fmt.Errorf("set archive pause: %w", err)
		}
		fmt.Printf("archive %q pause set to %v\n", pauseArchive, paused)
		return nil
	}

	if err := pause.SetGlobalPause(ctx, paused); err != nil {
		return fmt.Errorf("set global pause: %w", err)
	}
	fmt.Printf("global pause set to %v\n", paused)
	return nil
}
