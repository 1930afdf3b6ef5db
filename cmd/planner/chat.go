package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/planner/core/protocol"
	"github.com/tailored-agentic-units/planner/export"
	"github.com/tailored-agentic-units/planner/planner"
)

var (
	chatLocation string
	chatStart    string
	chatEnd      string
	chatRemote   string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Plan a trip interactively",
	Long: `Start an interactive planning session for a trip.

Plain lines are sent to the assistant. Commands:
  /promote                        save the latest reply as the itinerary
  /draft <notes>                  ask for a day-by-day itinerary
  /trip <location> <start> <end>  switch trips (dates as YYYY-MM-DD)
  /show                           print the saved itinerary
  /export <file>                  write the trip to an iCalendar file
  /quit                           leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		trip, err := protocol.ParseTrip(chatLocation, chatStart, chatEnd)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if chatRemote != "" {
			cfg.Remote.URL = chatRemote
		}

		ctl, err := planner.New(cfg)
		if err != nil {
			return err
		}
		defer ctl.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		r := &repl{ctl: ctl, out: cmd.OutOrStdout()}
		if err := r.selectTrip(ctx, trip); err != nil {
			return err
		}
		return r.run(ctx, cmd.InOrStdin())
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatLocation, "location", "", "Trip location (required)")
	chatCmd.Flags().StringVar(&chatStart, "start", "", "Trip start date, YYYY-MM-DD (required)")
	chatCmd.Flags().StringVar(&chatEnd, "end", "", "Trip end date, YYYY-MM-DD (required)")
	chatCmd.Flags().StringVar(&chatRemote, "remote", "", "Planner service URL (overrides config)")
	chatCmd.MarkFlagRequired("location")
	chatCmd.MarkFlagRequired("start")
	chatCmd.MarkFlagRequired("end")
}

type repl struct {
	ctl  *planner.Controller
	trip protocol.Trip
	out  io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	r.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		quit, err := r.handle(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		if quit {
			break
		}
		r.printStatus()
		r.prompt()
	}

	r.ctl.Wait()
	return scanner.Err()
}

func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		if line == "" {
			return false, nil
		}
		r.ctl.SendUserMessage(ctx, line)
		r.printLatest()
		return false, nil
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/quit", "/exit":
		return true, nil

	case "/promote":
		result := r.ctl.PromoteCurrentItinerary(ctx)
		switch result.Status {
		case planner.StatusSkipped:
			fmt.Fprintln(r.out, "Nothing to save yet.")
		case planner.StatusSaved:
			fmt.Fprintln(r.out, "Itinerary saved.")
		case planner.StatusFailed:
			fmt.Fprintf(r.out, "Saved on this device only: %v\n", result.Err)
		case planner.StatusStale:
			fmt.Fprintln(r.out, "Trip changed before the save finished.")
		}

	case "/draft":
		if err := r.ctl.Draft(ctx, r.trip, rest); err != nil {
			return false, err
		}
		r.printLatest()

	case "/trip":
		fields := strings.Fields(rest)
		if len(fields) < 3 {
			return false, fmt.Errorf("usage: /trip <location> <start> <end>")
		}
		n := len(fields)
		trip, err := protocol.ParseTrip(strings.Join(fields[:n-2], " "), fields[n-2], fields[n-1])
		if err != nil {
			return false, err
		}
		return false, r.selectTrip(ctx, trip)

	case "/show":
		v, ok := r.ctl.Current()
		if !ok || !v.HasSnapshot {
			fmt.Fprintln(r.out, "No itinerary saved for this trip.")
			break
		}
		fmt.Fprintln(r.out, v.Snapshot.Content)

	case "/export":
		if rest == "" {
			return false, fmt.Errorf("usage: /export <file>")
		}
		v, _ := r.ctl.Current()
		if err := export.WriteFile(rest, r.trip, v.Snapshot); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Wrote %s\n", rest)

	default:
		return false, fmt.Errorf("unknown command %s", cmd)
	}

	return false, nil
}

func (r *repl) selectTrip(ctx context.Context, trip protocol.Trip) error {
	if err := r.ctl.SelectTrip(ctx, trip.ID, trip.Location); err != nil {
		return err
	}
	r.trip = trip

	v, _ := r.ctl.Current()
	fmt.Fprintf(r.out, "Trip to %s (%s to %s), %d messages loaded from %s.\n",
		trip.Location,
		trip.StartDate.Format(protocol.DateLayout),
		trip.EndDate.Format(protocol.DateLayout),
		len(v.Messages)-1,
		v.Source,
	)
	return nil
}

func (r *repl) printLatest() {
	v, ok := r.ctl.Current()
	if !ok {
		return
	}
	if msg, ok := protocol.LatestAssistant(v.Messages); ok {
		fmt.Fprintf(r.out, "\n%s\n\n", msg.Content)
	}
}

func (r *repl) printStatus() {
	if notice, ok := r.ctl.Status(); ok {
		fmt.Fprintf(r.out, "[%s] %s\n", notice.Severity, notice.Message)
		r.ctl.DismissStatus()
	}
}

func (r *repl) prompt() {
	fmt.Fprint(r.out, "> ")
}
