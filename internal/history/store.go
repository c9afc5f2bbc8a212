// Package history persists generated batches so that earlier runs can be
// listed, reviewed, and searched by variant.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/0x6d61/tampergen/internal/variant"
)

// Batch is one persisted generation run.
type Batch struct {
	ID        string            `json:"id"`
	Payload   string            `json:"payload"`
	Seed      int64             `json:"seed"`
	Variants  []variant.Variant `json:"variants"`
	Baseline  variant.Variant   `json:"baseline"`
	Failures  []FailureRecord   `json:"failures,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// FailureRecord is a persisted variant.Failure.
type FailureRecord struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// FromResult converts a generator result into a Batch ready to be saved.
func FromResult(res *variant.Result) *Batch {
	b := &Batch{
		Payload:  res.Payload,
		Seed:     res.Seed,
		Variants: res.Variants,
		Baseline: res.Baseline,
	}
	for _, f := range res.Failures {
		b.Failures = append(b.Failures, FailureRecord{Index: f.Index, Name: f.Name, Error: f.Err.Error()})
	}
	return b
}

// Result rebuilds the generator result a batch was saved from.
func (b *Batch) Result() *variant.Result {
	res := &variant.Result{
		Payload:  b.Payload,
		Seed:     b.Seed,
		Variants: b.Variants,
		Baseline: b.Baseline,
	}
	for _, f := range b.Failures {
		res.Failures = append(res.Failures, variant.Failure{Index: f.Index, Name: f.Name, Err: errors.New(f.Error)})
	}
	return res
}

// Summary is a lightweight batch overview.
type Summary struct {
	ID        string    `json:"id"`
	Payload   string    `json:"payload"`
	Seed      int64     `json:"seed"`
	Variants  int       `json:"variants"`
	CreatedAt time.Time `json:"created_at"`
}

// Occurrence locates one stored variant.
type Occurrence struct {
	BatchID   string    `json:"batch_id"`
	Index     int       `json:"index"`
	Label     string    `json:"label"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and retrieves batches.
type Store interface {
	Save(ctx context.Context, batch *Batch) error
	LoadByID(ctx context.Context, id string) (*Batch, error)
	List(ctx context.Context) ([]*Summary, error)
	Find(ctx context.Context, text string) ([]*Occurrence, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
