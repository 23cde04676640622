package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/christopherklint97/kalendr/internal/calendar"
	"github.com/christopherklint97/kalendr/internal/config"
	"github.com/christopherklint97/kalendr/internal/store"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [ics-url-or-file]",
	Short: "Import events from an iCalendar feed into a group",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().String("group", "", "target group id (defaults to calendar.group_id)")
	importCmd.Flags().Int("days", assistant.DefaultAnalysisWindowDays, "how many days ahead to import")
	importCmd.Flags().Bool("dry-run", false, "show what would be imported without saving")
	importCmd.Flags().Bool("remember", false, "store the user and group as the default import target")
}

func runImport(cmd *cobra.Command, args []string) error {
	groupID, _ := cmd.Flags().GetString("group")
	days, _ := cmd.Flags().GetInt("days")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	remember, _ := cmd.Flags().GetBool("remember")

	e, err := setup(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	source := e.cfg.Calendar.Source
	if len(args) == 1 {
		source = args[0]
	}
	if source == "" {
		return fmt.Errorf("no calendar source: pass a URL or file, or set calendar.source")
	}
	if groupID == "" {
		groupID = e.cfg.Calendar.GroupID
	}
	if groupID == "" {
		return fmt.Errorf("no group given: pass --group or set calendar.group_id")
	}
	if days < 1 {
		return fmt.Errorf("--days must be positive")
	}

	ctx := cmd.Context()
	user, err := e.resolveUser(ctx, cmd)
	if err != nil {
		return err
	}

	today := e.svc.Today()
	windowEnd := today.AddDate(0, 0, days)
	parsed, err := calendar.Fetch(ctx, source, today, windowEnd)
	if err != nil {
		return err
	}
	e.logger.Debug("calendar fetched", "source", source, "occurrences", len(parsed))

	existing, err := e.db.EventsForUser(ctx, user,
		today.Format(assistant.DateLayout), windowEnd.Format(assistant.DateLayout))
	if err != nil {
		return fmt.Errorf("fetching existing events: %w", err)
	}

	fresh := newImports(existing, groupID, calendar.ToCalendarEvents(parsed, time.Local))

	if dryRun {
		byDay := calendar.GroupByDay(parsed)
		dates := make([]string, 0, len(byDay))
		for d := range byDay {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		for _, d := range dates {
			fmt.Printf("  %s  %d event(s)\n", d, len(byDay[d]))
		}
		fmt.Printf("\n%d occurrence(s) found, %d new.\n", len(parsed), len(fresh))
		return nil
	}

	imported := 0
	for _, ce := range fresh {
		_, err := e.db.InsertEvent(ctx, store.Event{
			GroupID:   groupID,
			Title:     ce.Title,
			Date:      ce.Date,
			Time:      ce.Time,
			EndTime:   ce.EndTime,
			CreatedBy: user,
		})
		if err != nil {
			e.logger.Warn("skipping event", "title", ce.Title, "date", ce.Date, "error", err)
			continue
		}
		imported++
	}

	if remember {
		if err := config.SaveCalendarTarget(user, groupID); err != nil {
			return fmt.Errorf("saving import target: %w", err)
		}
	}

	fmt.Printf("Imported %d of %d event(s) into %s.\n", imported, len(fresh), groupID)
	return nil
}

// newImports drops incoming events that already exist in groupID with the
// same date, start time and title.
func newImports(existing []store.Event, groupID string, incoming []assistant.CalendarEvent) []assistant.CalendarEvent {
	type key struct{ date, time, title string }
	seen := make(map[key]bool)
	for _, e := range existing {
		if e.GroupID == groupID {
			seen[key{e.Date, e.Time, e.Title}] = true
		}
	}

	var out []assistant.CalendarEvent
	for _, ce := range incoming {
		k := key{ce.Date, ce.Time, ce.Title}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, ce)
	}
	return out
}
