package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/SerjoschDuering/ifcore-platform/config"
	"github.com/SerjoschDuering/ifcore-platform/internal/adapters/apiclient"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	"github.com/SerjoschDuering/ifcore-platform/internal/session/poller"
	"github.com/SerjoschDuering/ifcore-platform/internal/session/projector"
	"github.com/SerjoschDuering/ifcore-platform/internal/session/store"
	"github.com/SerjoschDuering/ifcore-platform/internal/session/submit"
	"github.com/SerjoschDuering/ifcore-platform/internal/session/viewer"
)

const (
	defaultCheckTimeout = 10 * time.Minute
	viewerPollInterval  = 20 * time.Millisecond
)

type checkOptions struct {
	Path     string
	User     string
	Timeout  time.Duration
	Category string
	JSON     bool
}

func parseCheckFlags(args []string) (checkOptions, error) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	opts := checkOptions{}
	fs.StringVar(&opts.User, "user", "", "User id sent as X-User-ID")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCheckTimeout, "Maximum duration to wait for the check to finish")
	fs.StringVar(&opts.Category, "category", "", "Highlight one category in the painted model")
	fs.BoolVar(&opts.JSON, "json", false, "Print the report as JSON")

	var positional []string
	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			return checkOptions{}, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
	if len(positional) != 1 {
		return checkOptions{}, errors.New("usage: check <file.ifc> [--user id] [--category id] [--timeout d] [--json]")
	}
	if opts.Timeout <= 0 {
		return checkOptions{}, errors.New("--timeout must be greater than zero")
	}
	opts.Path = positional[0]
	return opts, nil
}

func runCheck(cmdCtx *commandContext, args []string) error {
	opts, err := parseCheckFlags(args)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.Path)
	if err != nil {
		return fmt.Errorf("open model: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat model: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	client := cmdCtx.Config.Client
	client.Sanitize()
	report, err := followCheck(ctx, checkSession{
		Client:     client,
		User:       opts.User,
		Categories: model.NewCategorySet(cmdCtx.Config.Category.TeamMap),
		Category:   opts.Category,
		MaxBytes:   cmdCtx.Config.Upload.MaxBytes,
		Logger:     cmdCtx.Logger,
	}, submit.File{
		Name:   filepath.Base(opts.Path),
		Size:   info.Size(),
		Reader: f,
	})
	if err != nil {
		return err
	}

	if opts.JSON {
		return writeJSON(cmdCtx.out(), report)
	}
	return report.write(cmdCtx.out())
}

// checkSession wires one client session for a single submission.
type checkSession struct {
	Client     config.ClientConfig
	User       string
	HTTPClient *http.Client
	Categories model.CategorySet
	Category   string
	MaxBytes   int64
	Logger     *slog.Logger
}

type categoryReport struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Checks int    `json:"checks"`
	Passed int    `json:"passed"`
	Failed int    `json:"failed"`
}

type viewerReport struct {
	Phase         viewer.Phase   `json:"phase"`
	ModelID       string         `json:"model_id,omitempty"`
	Elements      int            `json:"elements"`
	LoadDuration  string         `json:"load_duration"`
	ErrorCategory string         `json:"error_category,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	Painted       map[string]int `json:"painted"`
}

type checkReport struct {
	JobID      string              `json:"job_id"`
	ProjectID  string              `json:"project_id"`
	Status     model.JobStatus     `json:"status"`
	KPIs       model.KPIs          `json:"kpis"`
	Band       model.CheckStatus   `json:"band"`
	Report     string              `json:"report_status"`
	Categories []categoryReport    `json:"categories"`
	Checks     []model.CheckResult `json:"checks"`
	Viewer     viewerReport        `json:"viewer"`
}

// followCheck submits f and blocks until the job is terminal and the model
// has been loaded and painted. Every session component is stopped on return.
func followCheck(ctx context.Context, s checkSession, f submit.File) (*checkReport, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := apiclient.New(apiclient.Options{
		Config:     s.Client,
		UserID:     s.User,
		HTTPClient: s.HTTPClient,
		Logger:     logger,
		MaxRetries: 2,
	})
	st := store.New()
	pl, err := poller.New(poller.Options{
		Store:       st,
		Fetcher:     api,
		Interval:    s.Client.PollInterval,
		Concurrency: s.Client.PollConcurrency,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	proj := projector.New(s.Categories, logger)
	engine := viewer.NewHeadlessEngine(api, s.MaxBytes)
	coord, err := viewer.New(viewer.Options{Engine: engine, Store: st, Logger: logger})
	if err != nil {
		return nil, err
	}
	sub, err := submit.New(submit.Options{API: api, Store: st, Poller: pl, MaxBytes: s.MaxBytes, Logger: logger})
	if err != nil {
		return nil, err
	}

	watchCtx, stopWatchers := context.WithCancel(ctx)
	var wg sync.WaitGroup
	stopped := false
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		stopWatchers()
		wg.Wait()
	}
	defer func() {
		stop()
		pl.Stop()
		if closeErr := coord.Close(context.WithoutCancel(ctx)); closeErr != nil && !errors.Is(closeErr, viewer.ErrClosed) {
			logger.Warn("close viewer", "error", closeErr)
		}
	}()

	if err = coord.Open(ctx); err != nil {
		return nil, fmt.Errorf("open viewer: %w", err)
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = proj.Run(watchCtx, st)
	}()
	go func() {
		defer wg.Done()
		_ = coord.Run(watchCtx)
	}()

	job, err := sub.Submit(ctx, f)
	if err != nil {
		return nil, err
	}
	if s.Category != "" {
		st.SetSelectedCategory(s.Category)
	}
	if job.FileURL != nil {
		if u, ok := api.FileURL(*job.FileURL); ok {
			st.SetIFCURL(u)
		}
	}

	final, err := waitForJob(ctx, st, job.ID)
	if err != nil {
		return nil, err
	}
	diag, err := waitForViewer(ctx, coord)
	if err != nil {
		return nil, err
	}

	// Settle with the watchers stopped so the paint below reflects the final state.
	stop()
	proj.Apply(st)
	if diag.Phase == viewer.PhaseReady {
		if err = coord.ApplyColors(ctx); err != nil {
			return nil, fmt.Errorf("apply colors: %w", err)
		}
	}

	snap := st.Snapshot()
	kpis := model.ComputeKPIs(snap.CheckResults)
	report := &checkReport{
		JobID:     final.ID,
		ProjectID: final.ProjectID,
		Status:    final.Status,
		KPIs:      kpis,
		Band:      kpis.Band(),
		Report:    model.ReportStatus(snap.CheckResults),
		Checks:    proj.FilterChecks(snap.CheckResults, s.Category),
		Viewer: viewerReport{
			Phase:         diag.Phase,
			ModelID:       diag.ModelID,
			Elements:      diag.Elements,
			LoadDuration:  diag.LoadDuration.String(),
			ErrorCategory: string(diag.ErrorCategory),
			ErrorMessage:  diag.ErrorMessage,
			Painted:       paintCounts(engine.Paint()),
		},
	}
	for _, cs := range proj.Stats(snap.CheckResults) {
		report.Categories = append(report.Categories, categoryReport{
			ID:     cs.Category.ID,
			Name:   cs.Category.Name,
			Checks: cs.Checks,
			Passed: cs.Passed,
			Failed: cs.Failed,
		})
	}
	return report, nil
}

func waitForJob(ctx context.Context, st *store.Store, id string) (model.Job, error) {
	wake := make(chan struct{}, 1)
	unsubscribe := st.Subscribe(func(store.Snapshot) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		if j, ok := st.Snapshot().Jobs[id]; ok && j.Status.IsTerminal() {
			return j, nil
		}
		select {
		case <-ctx.Done():
			return model.Job{}, fmt.Errorf("wait for job %s: %w", id, ctx.Err())
		case <-wake:
		}
	}
}

func waitForViewer(ctx context.Context, coord *viewer.Coordinator) (viewer.Diagnostics, error) {
	ticker := time.NewTicker(viewerPollInterval)
	defer ticker.Stop()
	for {
		d := coord.Diagnostics()
		if d.Phase == viewer.PhaseReady || d.Phase == viewer.PhaseError {
			return d, nil
		}
		select {
		case <-ctx.Done():
			return d, fmt.Errorf("wait for viewer (phase %s): %w", d.Phase, ctx.Err())
		case <-ticker.C:
		}
	}
}

func paintCounts(paint map[string]string) map[string]int {
	out := make(map[string]int)
	for _, hex := range paint {
		out[hex]++
	}
	return out
}

func (r *checkReport) write(w io.Writer) error {
	if err := writef(w, "Job %s (project %s): %s\n", r.JobID, r.ProjectID, r.Status); err != nil {
		return err
	}
	if err := writef(w, "Checks: %d total, %d passed, %d failed, pass rate %.0f%% (%s)\nReport status: %s\n\n",
		r.KPIs.Total, r.KPIs.Passed, r.KPIs.Failed, r.KPIs.PassRate*100, r.Band, r.Report); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "CATEGORY\tCHECKS\tPASSED\tFAILED"); err != nil {
		return err
	}
	for _, c := range r.Categories {
		if err := writef(tw, "%s\t%d\t%d\t%d\n", c.Name, c.Checks, c.Passed, c.Failed); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if err := writeln(w); err != nil {
		return err
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "CHECK\tTEAM\tSTATUS\tSUMMARY"); err != nil {
		return err
	}
	for _, c := range r.Checks {
		if err := writef(tw, "%s\t%s\t%s\t%s\n", c.CheckName, c.Team, c.Status, c.Summary); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	v := r.Viewer
	if err := writef(w, "\nViewer: %s, %d elements, loaded in %s\n", v.Phase, v.Elements, v.LoadDuration); err != nil {
		return err
	}
	if v.ErrorMessage != "" {
		if err := writef(w, "Viewer error (%s): %s\n", v.ErrorCategory, v.ErrorMessage); err != nil {
			return err
		}
	}
	colors := make([]string, 0, len(v.Painted))
	for hex := range v.Painted {
		colors = append(colors, hex)
	}
	sort.Strings(colors)
	for _, hex := range colors {
		if err := writef(w, "  %s  %d elements\n", hex, v.Painted[hex]); err != nil {
			return err
		}
	}
	return nil
}
