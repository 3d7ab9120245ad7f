package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/submission"
)

var (
	fillForm    string
	fillOpenAPI bool
	fillDryRun  bool
	fillYes     bool
	fillTimeout time.Duration
)

var fillCmd = &cobra.Command{
	Use:   "fill <definitions>",
	Short: "Answer a form in the terminal and submit it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		set, err := loadSet(cmd, args[0], fillOpenAPI)
		if err != nil {
			return err
		}
		id, err := pickForm(set, fillForm)
		if err != nil {
			return err
		}
		def, err := set.Lookup(id)
		if err != nil {
			return err
		}

		form, err := formflow.New(cfg, def, formflow.WithLogger(logger))
		if err != nil {
			return err
		}
		defer form.Close()

		opts := []tui.Option{
			tui.WithValidator(form.Validator()),
			tui.WithLogger(logger),
			tui.WithTheme(tui.Theme{InfoPrefix: "> ", ErrorPrefix: "! "}),
		}
		if !fillYes && !fillDryRun {
			opts = append(opts, tui.WithConfirm("Submit this form?"))
		}
		filler := tui.New(opts...)
		if err := filler.Fill(ctx, def, form.View); err != nil {
			return err
		}

		if fillDryRun {
			return printPayload(cmd, form)
		}

		attempt, err := form.Submit(ctx)
		if err != nil {
			if submission.IsValidationError(err) {
				_ = filler.Report(ctx, form.View.Snapshot())
			}
			return err
		}
		logger.Debug("submission started", zap.String("attempt", attempt.ID), zap.String("endpoint", attempt.Endpoint))

		waitCtx := ctx
		if fillTimeout > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(ctx, fillTimeout)
			defer cancel()
		}
		outcome, err := attempt.Wait(waitCtx)
		if err != nil {
			return err
		}
		if err := filler.Report(ctx, form.View.Snapshot()); err != nil {
			return err
		}
		if outcome.Status != model.StatusSucceeded {
			return errors.New("submission failed")
		}
		return nil
	},
}

func init() {
	fillCmd.Flags().StringVar(&fillForm, "form", "", "form id (optional when the file declares one form)")
	fillCmd.Flags().BoolVar(&fillOpenAPI, "openapi", false, "read forms from an OpenAPI document")
	fillCmd.Flags().BoolVar(&fillDryRun, "dry-run", false, "print the payload instead of submitting")
	fillCmd.Flags().BoolVarP(&fillYes, "yes", "y", false, "submit without confirmation")
	fillCmd.Flags().DurationVar(&fillTimeout, "timeout", 30*time.Second, "maximum time to wait for the submission")
	rootCmd.AddCommand(fillCmd)
}

func printPayload(cmd *cobra.Command, form *formflow.Form) error {
	endpoint, err := form.Endpoint()
	if err != nil && !cfg.Simulation {
		return err
	}
	payload := submission.BuildPayload(form.View.Values(), time.Now(), cfg.PageURL, cfg.Settings().Hidden...)
	out, err := json.MarshalIndent(map[string]any{
		"endpoint": endpoint,
		"payload":  payload,
	}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
