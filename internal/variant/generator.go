package variant

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/0x6d61/tampergen/internal/payload"
	"github.com/0x6d61/tampergen/internal/tamper"
)

// Observer is notified once per catalog entry, in catalog order, after a
// batch has been generated. err is non-nil for skipped entries.
type Observer interface {
	Observe(name string, category tamper.Category, input, output string, err error)
}

// Generator applies every catalog entry to the original payload exactly once.
// Entries are never chained: each one sees the untransformed input.
type Generator struct {
	catalog  tamper.Catalog
	workers  int
	logger   *slog.Logger
	observer Observer
}

// Option configures a Generator.
type Option func(*Generator)

// WithWorkers sets the number of goroutines applying tampers. Values below
// 2 run the catalog on the calling goroutine.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		g.workers = n
	}
}

// WithLogger sets the logger used to report skipped entries.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithObserver registers an observer, typically a metrics collector.
func WithObserver(o Observer) Option {
	return func(g *Generator) {
		g.observer = o
	}
}

// New creates a Generator over catalog.
func New(catalog tamper.Catalog, opts ...Option) *Generator {
	g := &Generator{
		catalog: catalog,
		workers: 1,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// outcome is the raw result of one catalog entry.
type outcome struct {
	text string
	err  error
}

// Generate applies the catalog to payload and returns the variants in
// catalog order followed by a separate base64 baseline.
//
// One seed per entry is drawn from rng in catalog order before any tamper
// runs, and each randomized entry gets its own source built from that seed.
// Sequential and parallel runs therefore agree for the same rng state.
//
// A failing entry is logged, recorded in Result.Failures and skipped; it
// never aborts the batch.
func (g *Generator) Generate(payload string, rng *rand.Rand) (*Result, error) {
	if rng == nil {
		return nil, fmt.Errorf("variant: generate: %w", tamper.ErrNilRand)
	}

	seeds := make([]int64, len(g.catalog))
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	outcomes := make([]outcome, len(g.catalog))
	if g.workers > 1 && len(g.catalog) > 1 {
		pool := newWorkerPool(g.workers)
		pool.start(payload, outcomes)
		for i, t := range g.catalog {
			pool.submit(job{index: i, tamper: t, seed: seeds[i]})
		}
		pool.close()
	} else {
		for i, t := range g.catalog {
			outcomes[i] = applyOne(t, payload, seeds[i])
		}
	}

	res := &Result{
		Payload:  payload,
		Variants: make([]Variant, 0, len(g.catalog)),
	}
	indexes := labelIndexes(g.catalog)
	for i, t := range g.catalog {
		o := outcomes[i]
		index := indexes[i]
		if g.observer != nil {
			g.observer.Observe(t.Name(), t.Category(), payload, o.text, o.err)
		}
		if o.err != nil {
			g.logger.Warn("tamper skipped",
				"transform", t.Name(),
				"index", index,
				"error", o.err,
			)
			res.Failures = append(res.Failures, Failure{Index: index, Name: t.Name(), Err: o.err})
			continue
		}
		g.logger.Debug("tamper applied",
			"transform", t.Name(),
			"index", index,
			"bytes", len(o.text),
		)
		res.Variants = append(res.Variants, newVariant(index, t, o.text))
	}

	baseline, err := Baseline(payload)
	if err != nil {
		return nil, err
	}
	res.Baseline = baseline
	return res, nil
}

// applyOne runs a single tamper. A panic is reported as the entry's error.
func applyOne(t tamper.Tamper, payload string, seed int64) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: fmt.Errorf("tamper %s panicked: %v", t.Name(), r)}
		}
	}()

	var rng *rand.Rand
	if t.Randomized() {
		rng = rand.New(rand.NewSource(seed))
	}
	text, err := t.Apply(payload, rng)
	return outcome{text: text, err: err}
}

// Baseline returns the base64 rendering of the untransformed payload.
func Baseline(payload string) (Variant, error) {
	t := tamper.Lookup("base64_encode")
	if t == nil {
		return Variant{}, fmt.Errorf("variant: baseline: base64_encode tamper not registered")
	}
	text, err := t.Apply(payload, nil)
	if err != nil {
		return Variant{}, fmt.Errorf("variant: baseline: %w", err)
	}
	v := newVariant(0, t, text)
	v.Label = BaselineLabel
	return v, nil
}

// Generate applies catalog to payload on the calling goroutine.
func Generate(payload string, catalog tamper.Catalog, rng *rand.Rand) (*Result, error) {
	return New(catalog).Generate(payload, rng)
}

// GenerateVariants validates s, runs the full catalog over it with a freshly
// time-seeded source and returns the catalog variants followed by the
// baseline.
func GenerateVariants(s string) ([]Variant, error) {
	if err := payload.Validate(s); err != nil {
		return nil, fmt.Errorf("variant: %w", err)
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	res, err := Generate(s, tamper.Default(), rng)
	if err != nil {
		return nil, err
	}
	return res.All(), nil
}

// labelIndexes returns the label index of every entry. Built-in entries keep
// their built-in catalog position, so a subset picked with Catalog.Select
// labels base64_encode as payload_15. A catalog holding any custom tamper is
// numbered by its own order instead, which keeps labels unique.
func labelIndexes(catalog tamper.Catalog) []int {
	idx := make([]int, len(catalog))
	for i, t := range catalog {
		pos := tamper.Position(t)
		if pos == 0 {
			for j := range idx {
				idx[j] = j + 1
			}
			return idx
		}
		idx[i] = pos
	}
	return idx
}
