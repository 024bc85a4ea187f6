// Package testutil provides deterministic builders shared by tests across
// packages: fixed-dimension embedding vectors, embedded records and
// conversation fixtures.
package testutil
