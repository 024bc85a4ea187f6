package ingest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/embedder"
	"github.com/hupe1980/ragmesh/logging"
)

// Options configure an ingestion pipeline.
type Options struct {
	// Workers bounds the embedding/upsert worker pool. Rows are independent,
	// so they embed in parallel; ordering of the final report is by row id.
	Workers int

	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Report aggregates the outcome of one ingestion run: how many rows were
// upserted and which rows failed, with their causes.
type Report struct {
	Upserted int
	Failed   []core.RowError
}

// Ok reports whether every row made it into the store.
func (r *Report) Ok() bool { return len(r.Failed) == 0 }

// Summary renders a one-line human-readable outcome.
func (r *Report) Summary() string {
	if r.Ok() {
		return fmt.Sprintf("ingested %d rows", r.Upserted)
	}
	return fmt.Sprintf("ingested %d rows, %d failed", r.Upserted, len(r.Failed))
}

// Pipeline embeds source rows and upserts them into a vector store.
type Pipeline struct {
	embedder embedder.Embedder
	store    core.VectorStore
	opts     Options
}

// New creates an ingestion pipeline over the given embedder and store.
func New(e embedder.Embedder, store core.VectorStore, optFns ...func(o *Options)) *Pipeline {
	opts := Options{
		Workers: 4,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{embedder: e, store: store, opts: opts}
}

// IngestFile loads a CSV file and ingests its rows.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*Report, error) {
	rows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	return p.Ingest(ctx, rows)
}

// Ingest embeds every row's summary and upserts the resulting records keyed
// by row id. A failing row is recorded and skipped; the rest of the batch
// proceeds. Re-running over the same rows leaves the store's record count
// unchanged.
func (p *Pipeline) Ingest(ctx context.Context, rows []Row) (*Report, error) {
	report := &Report{}
	if len(rows) == 0 {
		return report, nil
	}

	type outcome struct {
		rowID int64
		err   error
	}

	jobs := make(chan Row)
	results := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range jobs {
				results <- outcome{rowID: row.ID, err: p.ingestRow(ctx, row)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, row := range rows {
			select {
			case jobs <- row:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for out := range results {
		if out.err != nil {
			report.Failed = append(report.Failed, core.RowError{RowID: out.rowID, Err: out.err})
			continue
		}
		report.Upserted++
	}

	// Workers complete in arbitrary order; report failures by row id.
	sort.Slice(report.Failed, func(i, j int) bool {
		return report.Failed[i].RowID < report.Failed[j].RowID
	})

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (p *Pipeline) ingestRow(ctx context.Context, row Row) error {
	content := row.Content()
	if content == "" {
		err := fmt.Errorf("row has no renderable fields")
		p.opts.Logger.Warn("row %d skipped: %v", row.ID, err)
		return err
	}

	vec, err := p.embedder.Embed(ctx, content)
	if err != nil {
		p.opts.Logger.Warn("row %d embedding failed: %v", row.ID, err)
		return err
	}

	rec := core.Record{
		RowID:     row.ID,
		Content:   content,
		Metadata:  row.Metadata(),
		Embedding: vec,
	}
	if err := p.store.Upsert(ctx, []core.Record{rec}); err != nil {
		p.opts.Logger.Warn("row %d upsert failed: %v", row.ID, err)
		return err
	}

	p.opts.Logger.Debug("row %d ingested", row.ID)
	return nil
}
