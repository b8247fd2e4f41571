// Package main wires the referral report pipeline end-to-end. This file keeps
// the CLI layer thin: stages come from internal packages, and I/O
// collaborators sit behind function variables so tests can replace them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"referralreport/internal/config"
	"referralreport/internal/datasource"
	"referralreport/internal/datasource/httpds"
	"referralreport/internal/merge"
	"referralreport/internal/metrics"
	"referralreport/internal/parser"
	"referralreport/internal/profile"
	"referralreport/internal/publish"
	"referralreport/internal/referral"
	"referralreport/internal/report"
	"referralreport/internal/storage"
	"referralreport/internal/table"
	"referralreport/internal/transformer/builtin"
)

// Stage names used in errors, logs and step metrics.
const (
	stageLoad      = "load"
	stageProfile   = "profile"
	stageNormalize = "normalize"
	stageMerge     = "merge"
	stageEvaluate  = "evaluate"
	stageWrite     = "write"
	stageStorage   = "storage"
	stagePublish   = "publish"
)

// StageError reports which stage of a run failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Function variables used to introduce test seams.
var (
	newRepositoryFn = storage.New

	openSourceFn = func(ctx context.Context, client *httpds.Client, src config.Source) (io.ReadCloser, error) {
		return datasource.FromLocation(src.Location, client).Open(ctx)
	}

	newPublisherFn = func(cfg config.Publish) (publish.Publisher, error) {
		return publish.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
	}

	normalizeFn = builtin.Normalize

	newRunID = uuid.NewString
	nowFn    = time.Now
)

// runResult is what a successful run reports back to the CLI.
type runResult struct {
	RunID     string
	Summary   report.Summary
	FanOut    int
	Recovered int
	Checksum  string
	Bytes     int
	Stored    int64
}

// runner carries the per-run collaborators.
type runner struct {
	p     config.Pipeline
	log   *zap.Logger
	out   io.Writer
	http  *httpds.Client
	runID string
}

func newRunner(p config.Pipeline, log *zap.Logger, out io.Writer) *runner {
	if log == nil {
		log = zap.NewNop()
	}
	id := newRunID()
	return &runner{
		p:     p,
		log:   log.With(zap.String("run_id", id), zap.String("job", p.Job)),
		out:   out,
		http:  httpds.NewClient(httpds.Config{}),
		runID: id,
	}
}

// step times fn, records the step metric and wraps a failure in StageError.
func (r *runner) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(r.p.Job, name, err, time.Since(start))
	if err != nil {
		var se *StageError
		if errors.As(err, &se) {
			return err
		}
		return &StageError{Stage: name, Err: err}
	}
	return nil
}

// runPipeline executes load, profile, normalize, merge, evaluate and write,
// then the optional storage and publish sinks.
func runPipeline(ctx context.Context, p config.Pipeline, log *zap.Logger, out io.Writer) (runResult, error) {
	r := newRunner(p, log, out)
	res := runResult{RunID: r.runID}

	var raw map[string]*table.Table
	if err := r.step(stageLoad, func() (err error) {
		raw, err = r.loadSources(ctx)
		return err
	}); err != nil {
		return res, err
	}

	if err := r.step(stageProfile, func() error { return r.profile(raw) }); err != nil {
		return res, err
	}

	norm := make(map[string]*table.Table, len(raw))
	if err := r.step(stageNormalize, func() error {
		for name, t := range raw {
			if err := ctx.Err(); err != nil {
				return err
			}
			norm[name] = normalizeFn(t)
		}
		return nil
	}); err != nil {
		return res, err
	}

	var merged merge.Result
	if err := r.step(stageMerge, func() (err error) {
		merged, err = r.merge(norm)
		return err
	}); err != nil {
		return res, err
	}
	res.FanOut = merged.FanOut()

	var rep *table.Table
	if err := r.step(stageEvaluate, func() error {
		derived := referral.Derive(merged.Table)
		res.Recovered = derived.Recovered
		if derived.Recovered > 0 {
			r.log.Warn("evaluate: rows recovered as invalid", zap.Int("rows", derived.Recovered))
		}
		var err error
		rep, res.Summary, err = report.Project(merged.Table, derived)
		return err
	}); err != nil {
		return res, err
	}
	metrics.RecordRow(p.Job, "valid", int64(res.Summary.Valid))
	metrics.RecordRow(p.Job, "invalid", int64(res.Summary.Invalid))

	if err := r.step(stageWrite, func() (err error) {
		res.Checksum, res.Bytes, err = report.WriteCSV(p.Output.Path, rep)
		return err
	}); err != nil {
		return res, err
	}
	r.log.Info("write: report written",
		zap.String("path", p.Output.Path),
		zap.Int("rows", rep.Len()),
		zap.Int("bytes", res.Bytes),
		zap.String("checksum", res.Checksum),
	)
	if err := r.printSummary(rep, res.Summary); err != nil {
		r.log.Warn("write: console summary failed", zap.Error(err))
	}

	if enabled(p.Storage.Kind) {
		if err := r.step(stageStorage, func() (err error) {
			res.Stored, err = r.store(ctx, rep)
			return err
		}); err != nil {
			return res, err
		}
	}

	if enabled(p.Publish.Kind) {
		if err := r.step(stagePublish, func() error { return r.publish(ctx, res) }); err != nil {
			return res, err
		}
	}

	r.log.Info("run: finished",
		zap.Int("rows", res.Summary.Total),
		zap.Int("valid", res.Summary.Valid),
		zap.Int("invalid", res.Summary.Invalid),
		zap.Int("fanout", res.FanOut),
		zap.String("checksum", res.Checksum),
	)
	return res, nil
}

func enabled(kind string) bool { return kind != "" && kind != "none" }

// loadSources reads every source concurrently, bounded by
// runtime.reader_workers.
func (r *runner) loadSources(ctx context.Context) (map[string]*table.Table, error) {
	named := r.p.Sources.Named()
	tables := make([]*table.Table, len(named))

	workers := r.p.Runtime.ReaderWorkers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, ns := range named {
		g.Go(func() error {
			t, err := r.loadSource(gctx, ns)
			if err != nil {
				return fmt.Errorf("%s: %w", ns.Name, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*table.Table, len(named))
	for i, ns := range named {
		out[ns.Name] = tables[i]
	}
	return out, nil
}

func (r *runner) loadSource(ctx context.Context, ns config.NamedSource) (*table.Table, error) {
	rc, err := openSourceFn(ctx, r.http, ns.Source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	warn := func(msg string) {
		r.log.Warn("load: "+msg, zap.String("source", ns.Name))
	}
	t, err := parser.Parse(ctx, ns.Name, ns.Source.Parser, rc, warn)
	if err != nil {
		return nil, err
	}
	r.log.Info("load: source read",
		zap.String("source", ns.Name),
		zap.Int("rows", t.Len()),
		zap.Int("columns", len(t.Columns)),
	)
	return t, nil
}

func (r *runner) profile(raw map[string]*table.Table) error {
	named := r.p.Sources.Named()
	sources := make([]profile.Source, 0, len(named))
	for _, ns := range named {
		s := profile.Of(raw[ns.Name])
		sources = append(sources, s)
		r.log.Debug("profile: source",
			zap.String("source", s.Name),
			zap.Int("rows", s.Rows),
			zap.Int("columns", len(s.Columns)),
			zap.Int("nulls", s.Nulls()),
		)
	}
	if r.out == nil {
		return nil
	}
	return profile.Render(r.out, sources)
}

func (r *runner) merge(norm map[string]*table.Table) (merge.Result, error) {
	rel := merge.Relations{
		Referrals:    norm[config.SourceUserReferrals],
		Rewards:      norm[config.SourceReferralRewards],
		Statuses:     norm[config.SourceUserReferralStatuses],
		UserLogs:     norm[config.SourceUserLogs],
		Transactions: norm[config.SourcePaidTransactions],
		Leads:        norm[config.SourceLeadLogs],
		ReferralLogs: norm[config.SourceUserReferralLogs],
	}
	res, err := merge.Merge(rel)
	if err != nil {
		var ke *merge.KeyError
		if errors.As(err, &ke) {
			r.log.Error("merge: join key missing", zap.String("source", ke.Relation), zap.String("column", ke.Column))
		}
		return res, err
	}

	for _, j := range res.Joins {
		metrics.RecordJoin(r.p.Job, j.Name, j.FanOut, j.Unmatched)
		fields := []zap.Field{
			zap.String("join", j.Name),
			zap.Int("left", j.Left),
			zap.Int("right", j.Right),
			zap.Int("rows", j.Out),
			zap.Int("matched", j.Matched),
			zap.Int("unmatched", j.Unmatched),
			zap.Int("fanout", j.FanOut),
		}
		if j.FanOut > 0 {
			r.log.Warn("merge: join duplicated referral rows", fields...)
			continue
		}
		r.log.Debug("merge: join", fields...)
	}
	metrics.RecordRow(r.p.Job, "referrals", int64(rel.Referrals.Len()))
	metrics.RecordRow(r.p.Job, "merged", int64(res.Table.Len()))
	return res, nil
}

func (r *runner) printSummary(rep *table.Table, sum report.Summary) error {
	if r.out == nil {
		return nil
	}
	if n := r.p.Output.SampleRows; n > 0 {
		if err := profile.RenderSample(r.out, rep, n); err != nil {
			return err
		}
	}
	return profile.RenderTotals(r.out, sum.Total, sum.Valid, sum.Invalid)
}

func (r *runner) store(ctx context.Context, rep *table.Table) (int64, error) {
	db := r.p.Storage.DB
	repo, err := newRepositoryFn(ctx, storage.Config{Kind: r.p.Storage.Kind, DSN: db.DSN, Table: db.Table})
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	batch := r.p.Runtime.BatchSize
	if batch <= 0 {
		batch = 1000
	}
	n, err := storage.Export(ctx, repo,
		storage.Sink{Kind: r.p.Storage.Kind, Table: db.Table, AutoCreate: db.AutoCreateTable, Replace: db.Replace},
		rep, report.Schema(),
		storage.Loader{Job: r.p.Job, BatchSize: batch, Logger: r.log},
	)
	if err != nil {
		return n, err
	}
	r.log.Info("storage: report loaded",
		zap.String("kind", r.p.Storage.Kind),
		zap.String("table", db.Table),
		zap.Int64("rows", n),
	)
	return n, nil
}

func (r *runner) publish(ctx context.Context, res runResult) error {
	pub, err := newPublisherFn(r.p.Publish)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			r.log.Warn("publish: close failed", zap.Error(cerr))
		}
	}()

	e := publish.Event{
		RunID:      res.RunID,
		Job:        r.p.Job,
		Rows:       res.Summary.Total,
		Valid:      res.Summary.Valid,
		Invalid:    res.Summary.Invalid,
		FanOut:     res.FanOut,
		Checksum:   res.Checksum,
		FinishedAt: nowFn().UTC(),
	}
	if err := pub.Publish(ctx, e); err != nil {
		return err
	}
	r.log.Info("publish: run event sent", zap.String("exchange", r.p.Publish.AMQP.Exchange))
	return nil
}
