package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"taskline/internal/board"
	"taskline/internal/taskapi"
	"taskline/internal/voice"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var waitDevice bool
	var play bool
	var keep bool
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a voice note and turn it into a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, _ := ctx.ensureLogger()

			if waitDevice {
				monitor := voice.NewDeviceMonitor(logger)
				waitCtx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
				defer cancel()
				device, err := monitor.Wait(waitCtx)
				if err != nil {
					return fmt.Errorf("wait for sound device: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sound device ready: %s\n", device)
			}

			recorder := voice.NewRecorder(cfg, logger)

			// Ctrl-C during capture discards the recording instead of
			// leaving an orphaned subprocess and a partial file.
			recCtx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stopSignals()

			path, err := recorder.Start(recCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recording (max %ds)...\n", cfg.Audio.MaxSeconds)

			// The stdin read below cannot be cancelled. When capture ends via
			// Ctrl-C the goroutine stays blocked until the process exits; when
			// the command runs in-process against a drained input reader the
			// read returns EOF immediately. The buffered channel lets the
			// goroutine finish without a receiver either way.
			prompted := make(chan error, 1)
			go func() {
				_, promptErr := promptLine(cmd, "Press Enter to stop: ")
				prompted <- promptErr
			}()

			select {
			case <-recCtx.Done():
				_ = recorder.Abort()
				fmt.Fprintln(cmd.OutOrStdout(), "\nRecording discarded")
				return recCtx.Err()
			case promptErr := <-prompted:
				if promptErr != nil {
					_ = recorder.Abort()
					return promptErr
				}
			}

			path, err = recorder.Stop()
			if err != nil {
				return err
			}
			if !keep {
				defer os.Remove(path)
			}

			if play {
				if err := recorder.Play(cmd.Context(), path); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: playback failed: %v\n", err)
				}
			}

			client, err := ctx.apiClient()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Transcribing...")
			draft, err := client.GenerateTask(cmd.Context(), path)
			if err != nil {
				return err
			}
			if !draft.IsTaskDetected {
				return fmt.Errorf("no task detected in the recording; try speaking a concrete action")
			}

			req := draft.Draft()
			printDraft(cmd, req)

			ok, err := confirm(cmd, "Create this task?", assumeYes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Discarded")
				return nil
			}

			return ctx.withBoard(func(b *board.Board, _ *board.Store) error {
				created, err := b.Create(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s\n", created.ID, created.Title)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&waitDevice, "wait-device", false, "Wait for a sound device to appear before recording")
	cmd.Flags().BoolVar(&play, "play", false, "Play the capture back before uploading")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep the capture file after upload")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Create the drafted task without confirmation")
	return cmd
}

func printDraft(cmd *cobra.Command, req taskapi.CreateTaskRequest) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Drafted task:")
	fmt.Fprintf(out, "  Title:    %s\n", req.Title)
	if req.Description != "" {
		fmt.Fprintf(out, "  Details:  %s\n", req.Description)
	}
	fmt.Fprintf(out, "  Priority: %s\n", priorityLabel(req.Priority))
	if req.DueDate != "" {
		fmt.Fprintf(out, "  Due:      %s\n", formatDueDate(req.DueDate))
	}
}
