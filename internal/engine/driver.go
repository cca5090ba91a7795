package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"
)

// Config governs the driver's restart loop.
type Config struct {
	// Attempts bounds the number of independent reset-and-allocate cycles.
	Attempts int
	// MinAttempts must run before the good-enough threshold may stop the loop.
	MinAttempts int
	// GoodEnoughScore ends the search early once the best attempt reaches it.
	GoodEnoughScore float64
	// Seed drives the per-attempt shuffle. A fixed seed makes runs reproducible.
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.Attempts <= 0 {
		c.Attempts = 10
	}
	if c.MinAttempts <= 0 {
		c.MinAttempts = 3
	}
	if c.GoodEnoughScore <= 0 || c.GoodEnoughScore > 1 {
		c.GoodEnoughScore = 0.95
	}
	return c
}

// Driver orchestrates the heuristic search: it runs up to Attempts fully
// independent allocation cycles, scores each one, and retains the best. Each
// attempt owns fresh grids and a fresh ledger, so attempts cannot leak state
// into one another.
type Driver struct {
	cfg Config
	log *zap.Logger
}

// NewDriver builds a driver. A nil logger is replaced with a no-op.
func NewDriver(cfg Config, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{cfg: cfg.withDefaults(), log: log}
}

// Generate runs the search and returns the best-scoring result. The only
// errors are input-contract violations; an incomplete allocation is reported
// through the result's shortfall list, never as an error.
func (d *Driver) Generate(settings Settings, requirements []Requirement, prefs []TeacherPreference) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if len(requirements) == 0 {
		return nil, fmt.Errorf("at least one subject requirement is needed")
	}
	for _, req := range requirements {
		if err := req.Validate(settings); err != nil {
			return nil, fmt.Errorf("invalid requirement: %w", err)
		}
	}

	rng := rand.New(rand.NewSource(d.cfg.Seed))
	demand := staffDemand(requirements)

	var best *Result
	attemptsRun := 0
	for i := 0; i < d.cfg.Attempts; i++ {
		attemptsRun++
		ordered := d.prioritize(requirements, demand, rng, i > 0)
		result := d.runAttempt(settings, ordered, prefs)

		if best == nil || result.Report.Score > best.Report.Score {
			best = result
		}
		d.log.Debug("allocation attempt finished",
			zap.Int("attempt", i+1),
			zap.Float64("score", result.Report.Score),
			zap.Float64("best", best.Report.Score))

		if best.Report.Score >= 1.0 {
			break
		}
		if attemptsRun >= d.cfg.MinAttempts && best.Report.Score >= d.cfg.GoodEnoughScore {
			break
		}
	}

	best.Report.Attempts = attemptsRun
	if len(best.Report.Shortfalls) > 0 {
		d.log.Warn("allocation finished with shortfalls",
			zap.Int("shortfalls", len(best.Report.Shortfalls)),
			zap.Float64("score", best.Report.Score))
	}
	return best, nil
}

// runAttempt performs one full reset-and-allocate cycle.
func (d *Driver) runAttempt(settings Settings, ordered []Requirement, prefs []TeacherPreference) *Result {
	att := newAttempt(settings, ordered, prefs, d.log)
	for _, req := range ordered {
		remaining := att.ledger.Remaining(req.Key())
		if remaining <= 0 {
			continue
		}
		allocator := att.allocatorFor(Classify(req.Subject))
		allocator.Place(req, remaining)
	}
	return buildResult(att.board, buildReport(att.ledger))
}

// prioritize orders rows so the hardest-to-place commitments go first: labs
// needing a contiguous same-day block, then subjects demanding more periods,
// then rows carrying an explicit preference, then the least-loaded staff.
// Greedy placement of flexible subjects before rigid ones fragments the grid
// and starves the lab blocks, hence this ordering.
//
// When shuffle is set, rows are shuffled before the stable sort so rows of
// equal priority vary their relative order between attempts.
func (d *Driver) prioritize(requirements []Requirement, demand map[string]int, rng *rand.Rand, shuffle bool) []Requirement {
	ordered := make([]Requirement, len(requirements))
	copy(ordered, requirements)
	if shuffle {
		rng.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]

		aLab := Classify(a.Subject) == CategoryLab
		bLab := Classify(b.Subject) == CategoryLab
		if aLab != bLab {
			return aLab
		}
		if a.Periods != b.Periods {
			return a.Periods > b.Periods
		}
		aPref := a.PreferredDay != "" || a.PreferredPeriod > 0
		bPref := b.PreferredDay != "" || b.PreferredPeriod > 0
		if aPref != bPref {
			return aPref
		}
		aLoad := rowDemand(a, demand)
		bLoad := rowDemand(b, demand)
		if aLoad != bLoad {
			return aLoad < bLoad
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.Class.String() < b.Class.String()
	})
	return ordered
}

// staffDemand totals the weekly periods demanded of each teacher across the
// whole input, a static proxy for how contended that teacher is.
func staffDemand(requirements []Requirement) map[string]int {
	demand := make(map[string]int)
	for _, req := range requirements {
		for _, teacher := range req.StaffMembers() {
			demand[teacher] += req.Periods
		}
	}
	return demand
}

func rowDemand(req Requirement, demand map[string]int) int {
	total := 0
	for _, teacher := range req.StaffMembers() {
		total += demand[teacher]
	}
	return total
}
