// internal/generation/simulator.go
package generation

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Annany2002/cvm-baseprep/internal/domain"
	"github.com/Annany2002/cvm-baseprep/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Options controls the pacing of simulated table builds.
type Options struct {
	Stagger     time.Duration // delay between successive job starts
	Tick        time.Duration // elapsed-time refresh interval while running
	MinDuration time.Duration // inclusive
	MaxDuration time.Duration // exclusive
	MinRows     int           // inclusive
	MaxRows     int           // exclusive
}

// DefaultOptions mirrors the pacing shown on the dashboard.
func DefaultOptions() Options {
	return Options{
		Stagger:     2 * time.Second,
		Tick:        time.Second,
		MinDuration: 5 * time.Second,
		MaxDuration: 15 * time.Second,
		MinRows:     10000,
		MaxRows:     510000,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Tick <= 0 {
		o.Tick = d.Tick
	}
	if o.Stagger < 0 {
		o.Stagger = 0
	}
	if o.MinDuration <= 0 {
		o.MinDuration = o.Tick
	}
	if o.MaxDuration < o.MinDuration {
		o.MaxDuration = o.MinDuration
	}
	if o.MinRows < 0 {
		o.MinRows = 0
	}
	if o.MaxRows < o.MinRows {
		o.MaxRows = o.MinRows
	}
	return o
}

// Hooks are called from scheduler callbacks, outside the run lock.
type Hooks struct {
	OnRecordComplete func(runID string, rec domain.GenerationRecord)
	OnRunComplete    func(runID string, records []domain.GenerationRecord)
}

// Simulator starts runs of simulated table builds.
type Simulator struct {
	sched Scheduler
	opts  Options

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewSimulator returns a simulator. A nil rng draws from a randomly seeded source.
func NewSimulator(sched Scheduler, opts Options, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulator{sched: sched, opts: opts.normalized(), rng: rng}
}

type jobPlan struct {
	duration time.Duration
	rows     int
}

func (s *Simulator) draw(n int) []jobPlan {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	plans := make([]jobPlan, n)
	for i := range plans {
		d := s.opts.MinDuration
		if span := s.opts.MaxDuration - s.opts.MinDuration; span > 0 {
			d += time.Duration(s.rng.Int64N(int64(span)))
		}
		rows := s.opts.MinRows
		if span := s.opts.MaxRows - s.opts.MinRows; span > 0 {
			rows += s.rng.IntN(span)
		}
		plans[i] = jobPlan{duration: d, rows: rows}
	}
	return plans
}

// Start schedules every record as an independent job: job i starts at
// i*Stagger, ticks while running and completes after its drawn duration.
// Completion order is not tied to start order.
func (s *Simulator) Start(records []domain.GenerationRecord, hooks Hooks) *Run {
	r := &Run{
		ID:         uuid.New().String(),
		sched:      s.sched,
		tick:       s.opts.Tick,
		hooks:      hooks,
		records:    make([]domain.GenerationRecord, len(records)),
		remaining:  len(records),
		generating: len(records) > 0,
		startedAt:  s.sched.Now(),
		done:       make(chan struct{}),
		tickers:    make([]Timer, len(records)),
	}
	for i, rec := range records {
		rec.Status = domain.StatusPending
		rec.ElapsedSeconds = 0
		rec.RowCount = 0
		rec.CompletedAt = nil
		rec.Columns = slices.Clone(rec.Columns)
		r.records[i] = rec
	}

	if len(records) == 0 {
		r.finishedAt = r.startedAt
		close(r.done)
		return r
	}

	customLog.Printf("Generation: run %s scheduling %d table(s)", r.ID, len(records))
	for i, p := range s.draw(len(records)) {
		s.sched.AfterFunc(time.Duration(i)*s.opts.Stagger, func() { r.startJob(i, p) })
	}
	return r
}

// Run is one generation request in flight or finished.
type Run struct {
	ID string

	sched Scheduler
	tick  time.Duration
	hooks Hooks

	mu         sync.Mutex
	records    []domain.GenerationRecord
	remaining  int
	generating bool
	startedAt  time.Time
	finishedAt time.Time
	tickers    []Timer
	done       chan struct{}
}

// Snapshot is a consistent copy of a run's state.
type Snapshot struct {
	ID           string                    `json:"run_id"`
	IsGenerating bool                      `json:"is_generating"`
	Completed    int                       `json:"completed"`
	Total        int                       `json:"total"`
	StartedAt    time.Time                 `json:"started_at"`
	FinishedAt   *time.Time                `json:"finished_at,omitempty"`
	Records      []domain.GenerationRecord `json:"tables"`
}

// Snapshot copies the current state of the run.
func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		ID:           r.ID,
		IsGenerating: r.generating,
		Total:        len(r.records),
		StartedAt:    r.startedAt,
		Records:      make([]domain.GenerationRecord, len(r.records)),
	}
	for i, rec := range r.records {
		rec.Columns = slices.Clone(rec.Columns)
		snap.Records[i] = rec
		if rec.Status == domain.StatusCompleted {
			snap.Completed++
		}
	}
	if !r.generating {
		f := r.finishedAt
		snap.FinishedAt = &f
	}
	return snap
}

// IsGenerating reports whether any job has not reached a terminal status.
func (r *Run) IsGenerating() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generating
}

// Done is closed once every job is terminal.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

func (r *Run) startJob(i int, p jobPlan) {
	r.mu.Lock()
	rec := &r.records[i]
	if !rec.Status.CanAdvanceTo(domain.StatusRunning) {
		r.mu.Unlock()
		return
	}
	rec.Status = domain.StatusRunning
	rec.ElapsedSeconds = 0
	r.tickers[i] = r.sched.AfterFunc(r.tick, func() { r.tickJob(i) })
	name := rec.Name
	r.mu.Unlock()

	customLog.Debugf("Generation: run %s started %s (planned %s)", r.ID, name, p.duration)
	r.sched.AfterFunc(p.duration, func() { r.completeJob(i, p) })
}

func (r *Run) tickJob(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := &r.records[i]
	if rec.Status != domain.StatusRunning {
		return
	}
	rec.ElapsedSeconds += r.tick.Seconds()
	r.tickers[i] = r.sched.AfterFunc(r.tick, func() { r.tickJob(i) })
}

func (r *Run) completeJob(i int, p jobPlan) {
	r.mu.Lock()
	rec := &r.records[i]
	if !rec.Status.CanAdvanceTo(domain.StatusCompleted) {
		r.mu.Unlock()
		return
	}
	if t := r.tickers[i]; t != nil {
		t.Stop()
	}
	now := r.sched.Now()
	rec.Status = domain.StatusCompleted
	rec.ElapsedSeconds = p.duration.Seconds()
	rec.RowCount = p.rows
	rec.CompletedAt = &now
	done := *rec
	done.Columns = slices.Clone(rec.Columns)

	r.remaining--
	finished := r.remaining == 0
	var all []domain.GenerationRecord
	if finished {
		r.generating = false
		r.finishedAt = now
		all = make([]domain.GenerationRecord, len(r.records))
		copy(all, r.records)
	}
	r.mu.Unlock()

	customLog.Printf("Generation: run %s completed %s with %d rows in %.1fs", r.ID, done.Name, done.RowCount, done.ElapsedSeconds)
	if r.hooks.OnRecordComplete != nil {
		r.hooks.OnRecordComplete(r.ID, done)
	}
	if finished {
		customLog.Printf("Generation: run %s finished, all %d table(s) created", r.ID, len(all))
		close(r.done)
		if r.hooks.OnRunComplete != nil {
			r.hooks.OnRunComplete(r.ID, all)
		}
	}
}
