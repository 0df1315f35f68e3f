package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/models"
	"github.com/claude/ironplan/internal/session"
	"github.com/claude/ironplan/internal/suggest"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "IronPlan server URL (e.g. https://ironplan.tail1234.ts.net)")
	title := flag.String("title", "", "session title (defaults to the scheduled day's name)")
	adhoc := flag.Bool("adhoc", false, "start an ad-hoc session not tied to a scheduled day")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("ironplan-session", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: ironplan-session -server <URL> [-title T] [-adhoc]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".ironplan-session")

	store, err := session.OpenSQLiteStore(stateDir)
	if err != nil {
		log.Error("failed to open session state", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := session.NewClient(*serverURL)
	ctrl := session.NewController(store, client, nil)

	app := &app{
		ctrl:   ctrl,
		client: client,
		log:    log,
		out:    os.Stdout,
	}
	if err := app.run(*title, *adhoc); err != nil {
		log.Error("session failed", "error", err)
		os.Exit(1)
	}
}

type app struct {
	ctrl   *session.Controller
	client *session.Client
	log    *slog.Logger
	out    *os.File

	timer *session.RestTimer
	rest  restDurations
}

type restDurations struct {
	normal  int
	complex int
}

func (a *app) run(title string, adhoc bool) error {
	sess, prescriptions, err := a.prepare(title, adhoc)
	if err != nil {
		return err
	}

	a.timer = session.NewRestTimer(func() {
		fmt.Fprintln(a.out, "\nrest over — back to the bar")
	})
	defer a.timer.Stop()

	a.printQueue(sess, prescriptions)
	fmt.Fprintln(a.out, `Commands: log <weight> <reps> [warmup|working|backoff|dropset|amrap] [easy|normal|hard],
undo, next, status, rest [seconds], pause, resume, skip, finish, discard, quit`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		done, err := a.dispatch(strings.Fields(scanner.Text()))
		if err != nil {
			fmt.Fprintln(a.out, "error:", err)
			continue
		}
		if done {
			return nil
		}
	}
}

// prepare resumes an existing local session or starts a new one from the
// server's up-next day.
func (a *app) prepare(title string, adhoc bool) (*models.LocalSession, []suggest.Prescription, error) {
	settings, err := a.client.FetchSettings()
	if err != nil {
		return nil, nil, fmt.Errorf("fetching settings: %w", err)
	}
	a.rest = restDurations{normal: settings.DefaultRestSeconds, complex: settings.DefaultBlockRest}

	if existing, err := a.ctrl.Current(); err != nil {
		return nil, nil, err
	} else if existing != nil {
		fmt.Fprintf(a.out, "Resuming session %q started %s\n",
			existing.Title, existing.StartedAt.Format("15:04"))
		return existing, nil, nil
	}

	lifts, err := a.client.FetchLifts()
	if err != nil {
		return nil, nil, fmt.Errorf("fetching lifts: %w", err)
	}

	day := &models.Day{Name: "Ad-hoc session"}
	if !adhoc {
		view, err := a.client.FetchActiveAssignment()
		if err != nil {
			return nil, nil, fmt.Errorf("fetching assignment: %w", err)
		}
		if view.UpNextDay == nil {
			return nil, nil, fmt.Errorf("no scheduled day up next; use -adhoc for an unscheduled session")
		}
		day = view.UpNextDay
	}

	if title == "" {
		title = day.Name
	}

	lookup := func(liftID uuid.UUID) (*float64, []suggest.PreviousSet) {
		oneRM, history, err := a.client.FetchLiftHistory(liftID)
		if err != nil {
			a.log.Warn("lift history unavailable", "lift", liftID, "error", err)
			return nil, nil
		}
		return oneRM, history
	}

	return a.ctrl.Start(day, title, settings, lifts, lookup)
}

func (a *app) dispatch(args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "log":
		return false, a.logSet(args[1:])
	case "undo":
		_, err := a.ctrl.UndoLastSet()
		return false, err
	case "next":
		_, err := a.ctrl.Advance(true)
		if err == nil {
			a.status()
		}
		return false, err
	case "status":
		a.status()
		return false, nil
	case "rest":
		seconds := a.rest.normal
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return false, fmt.Errorf("rest wants a positive number of seconds")
			}
			seconds = n
		}
		if seconds <= 0 {
			seconds = 120
		}
		a.timer.Start(seconds)
		fmt.Fprintf(a.out, "resting %ds\n", seconds)
		return false, nil
	case "pause":
		a.timer.Pause()
		return false, nil
	case "resume":
		a.timer.Resume()
		return false, nil
	case "skip":
		a.timer.Skip()
		return false, nil
	case "finish":
		result, err := a.ctrl.Finish(context.Background())
		if errors.Is(err, session.ErrDayCompleted) {
			fmt.Fprintln(a.out, "the scheduled day is already marked complete — an earlier submit may have landed")
			fmt.Fprintln(a.out, "check your session history on the server, then 'discard' to clear the local copy")
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if result == nil {
			fmt.Fprintln(a.out, "nothing to finish")
			return true, nil
		}
		fmt.Fprintf(a.out, "Session saved: %s\n", result.Session.Title)
		if result.PRCount > 0 {
			fmt.Fprintf(a.out, "New personal records: %d\n", result.PRCount)
		}
		if result.Advanced && result.NewWeekNumber != nil {
			fmt.Fprintf(a.out, "Week complete — advanced to week %d\n", *result.NewWeekNumber)
		}
		return true, nil
	case "discard":
		if err := a.ctrl.Discard(); err != nil {
			return false, err
		}
		fmt.Fprintln(a.out, "session discarded")
		return true, nil
	case "quit":
		fmt.Fprintln(a.out, "session kept locally; run again to resume")
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q", args[0])
	}
}

// logSet parses "log <weight> <reps> [setType] [feedback]" and records the
// set against the current exercise, then starts the rest timer.
func (a *app) logSet(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: log <weight> <reps> [setType] [feedback]")
	}
	weight, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad weight %q", args[0])
	}
	reps, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad reps %q", args[1])
	}

	setType := models.SetWorking
	var feedback *models.SetFeedback
	for _, arg := range args[2:] {
		if t := models.SetType(arg); t.Valid() {
			setType = t
			continue
		}
		if f := models.SetFeedback(arg); f.Valid() {
			feedback = &f
			continue
		}
		return fmt.Errorf("unknown set type or feedback %q", arg)
	}

	sess, err := a.ctrl.Current()
	if err != nil || sess == nil {
		return fmt.Errorf("no session in progress")
	}
	if len(sess.Exercises) == 0 {
		return fmt.Errorf("session has no exercises")
	}

	if _, err := a.ctrl.LogSet(sess.CurrentExerciseIndex, weight, reps, setType, feedback, nil); err != nil {
		return err
	}

	seconds := a.rest.normal
	if ex := &sess.Exercises[sess.CurrentExerciseIndex]; len(ex.Movements) > 1 && a.rest.complex > 0 {
		seconds = a.rest.complex
	}
	if setType != models.SetWarmup && seconds > 0 {
		a.timer.Start(seconds)
		fmt.Fprintf(a.out, "logged %gx%d — resting %ds\n", weight, reps, seconds)
	} else {
		fmt.Fprintf(a.out, "logged %gx%d\n", weight, reps)
	}
	return nil
}

func (a *app) status() {
	sess, err := a.ctrl.Current()
	if err != nil || sess == nil {
		fmt.Fprintln(a.out, "no session in progress")
		return
	}
	if len(sess.Exercises) == 0 {
		fmt.Fprintf(a.out, "%s — no exercises queued\n", sess.Title)
		return
	}
	ex := &sess.Exercises[sess.CurrentExerciseIndex]
	fmt.Fprintf(a.out, "%s — set %d of %d (target %d reps)\n",
		ex.LiftName, session.WorkingSetCount(ex)+1, ex.TargetSets, ex.TargetReps)
	if a.timer.State() == session.TimerRunning {
		fmt.Fprintf(a.out, "rest: %ds remaining\n", a.timer.Remaining())
	}
}

func (a *app) printQueue(sess *models.LocalSession, prescriptions []suggest.Prescription) {
	fmt.Fprintf(a.out, "Session: %s\n", sess.Title)
	for i, ex := range sess.Exercises {
		marker := "  "
		if i == sess.CurrentExerciseIndex {
			marker = "> "
		}
		fmt.Fprintf(a.out, "%s%s  %dx%d", marker, ex.LiftName, ex.TargetSets, ex.TargetReps)
		if i < len(prescriptions) && len(prescriptions[i].Working) > 0 {
			fmt.Fprintf(a.out, " @ %gkg", prescriptions[i].Working[0].Weight)
		}
		fmt.Fprintln(a.out)
	}
}
