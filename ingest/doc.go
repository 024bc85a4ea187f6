// Package ingest loads raw unit rows from CSV, builds a deterministic text
// summary per row, embeds it and upserts the resulting records into a vector
// store. Rows fail independently: the batch continues past a bad row and the
// pipeline reports successes plus failed row ids with causes instead of
// aborting. Re-running over unchanged source data is idempotent because
// records are upserted keyed by row id.
package ingest
