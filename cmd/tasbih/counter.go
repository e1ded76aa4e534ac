package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tasbih/internal/feedback"
	"github.com/verte-zerg/tasbih/internal/model"
	"github.com/verte-zerg/tasbih/internal/session"
	"github.com/verte-zerg/tasbih/internal/stats"
)

var (
	statusVerbose bool
	incCount      int
	resetYes      bool
	targetClear   bool
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print counter/target and progress in the current set",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
	cmd.Flags().BoolVarP(&statusVerbose, "verbose", "v", false, "include the dhikr and set number")
	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return writeStatus(cmd.OutOrStdout(), a.session.Snapshot(), statusVerbose)
}

// writeStatus prints the complication lines: total/target, then the position
// inside the current set.
func writeStatus(w io.Writer, st session.State, verbose bool) error {
	p := session.ProgressOf(st.Total, st.Target)
	lines := []string{
		fmt.Sprintf("%d/%d", st.Total, st.Target),
		strconv.Itoa(p.InSet),
	}
	if verbose {
		name := st.Dhikr.Transliteration
		if name == "" {
			name = st.Dhikr.ID
		}
		extra := fmt.Sprintf("%s · set %d · %s", name, p.CompletedSets+1, st.Mode)
		if p.SetComplete {
			extra = fmt.Sprintf("%s · set %d complete · %s", name, p.CompletedSets, st.Mode)
		}
		if st.Override {
			extra += " · custom target"
		}
		lines = append(lines, extra)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newIncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inc",
		Short: "Count one or more taps",
		Args:  cobra.NoArgs,
		RunE:  runIncCmd,
	}
	cmd.Flags().IntVarP(&incCount, "count", "n", 1, "number of taps")
	return cmd
}

func runIncCmd(cmd *cobra.Command, _ []string) error {
	if incCount < 1 {
		return fmt.Errorf("--count must be >= 1")
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	dhikr := a.session.Dhikr()
	var persistErr error
	for i := 0; i < incCount; i++ {
		step, err := a.session.Increment(ctx)
		if err != nil && persistErr == nil {
			persistErr = err
		}
		now := time.Now()
		if err := a.store.RecordTap(ctx, dhikr.ID, 1, now); err != nil {
			logErrf("failed to record tap: %v\n", err)
		}
		switch feedback.Classify(step) {
		case feedback.CueSetComplete:
			if _, err := a.store.RecordCompletion(ctx, model.Completion{
				DhikrID: dhikr.ID, Total: step.Total, Target: a.session.Target(), CompletedAt: now,
			}); err != nil {
				logErrf("failed to record completion: %v\n", err)
			}
			if _, err := fmt.Fprintf(out, "Set %s complete.\n", stats.FormatCount(step.Progress.CompletedSets)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		case feedback.CueMilestone:
			if _, err := fmt.Fprintf(out, "Milestone: %s\n", stats.FormatCount(step.Total)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	if err := writeStatus(out, a.session.Snapshot(), false); err != nil {
		return err
	}
	if persistErr != nil {
		return fmt.Errorf("counter advanced but was not saved: %w", persistErr)
	}
	return nil
}

func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Remove the last tap",
		Args:  cobra.NoArgs,
		RunE:  runUndoCmd,
	}
}

func runUndoCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	step, err := a.session.Decrement(ctx)
	if err != nil {
		return fmt.Errorf("failed to save counter: %w", err)
	}
	if step.Changed {
		if err := a.store.RecordTap(ctx, a.session.Dhikr().ID, -1, time.Now()); err != nil {
			logErrf("failed to record undo: %v\n", err)
		}
	}
	return writeStatus(cmd.OutOrStdout(), a.session.Snapshot(), false)
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the counter to zero",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("refusing to reset without a terminal; pass --yes")
		}
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Reset the counter to 0? [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			logErrf("Reset cancelled.\n")
			return nil
		}
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.session.Reset(commandContext(cmd)); err != nil {
		return fmt.Errorf("failed to save counter: %w", err)
	}
	return writeStatus(cmd.OutOrStdout(), a.session.Snapshot(), false)
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func newTargetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target [n]",
		Short: "Set a custom target, or restore the dhikr's count with --clear",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTargetCmd,
	}
	cmd.Flags().BoolVar(&targetClear, "clear", false, "use the active dhikr's recommended count")
	return cmd
}

func runTargetCmd(cmd *cobra.Command, args []string) error {
	if targetClear == (len(args) == 1) {
		return fmt.Errorf("pass either a target or --clear")
	}
	var n int
	if !targetClear {
		parsed, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", args[0], session.ErrInvalidTarget)
		}
		n = parsed
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	if targetClear {
		err = a.session.ClearTargetOverride(ctx)
	} else {
		err = a.session.SetTarget(ctx, n)
	}
	if err != nil {
		return err
	}
	return writeStatus(cmd.OutOrStdout(), a.session.Snapshot(), true)
}

func newSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <dhikr-id>",
		Short: "Make a dhikr the active one",
		Args:  cobra.ExactArgs(1),
		RunE:  runSelectCmd,
	}
}

func runSelectCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	d, err := a.catalog.Lookup(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("%w: %s (see `tasbih dhikr list`)", err, args[0])
	}
	ctx := commandContext(cmd)
	if a.catalog.IsCustom(d.ID) {
		if err := a.premium.Require(ctx); err != nil {
			return err
		}
	}
	if err := a.session.SelectDhikr(ctx, d); err != nil {
		return err
	}
	return writeStatus(cmd.OutOrStdout(), a.session.Snapshot(), true)
}
