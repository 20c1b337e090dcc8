package engine

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"kpiauditor/internal/domain"
	"kpiauditor/internal/logger"
	"kpiauditor/internal/report"
)

// Runner executes simulated audits in the background, one goroutine per
// audit. Results are deterministic per college name so repeated runs are
// reproducible in demos and tests.
type Runner struct {
	store        *Store
	stepInterval time.Duration
	log          *logger.Logger

	mu      sync.Mutex
	cancels map[string]chan struct{}
}

// NewRunner creates a runner over the given store.
// Parameters:
//   - store: audit persistence layer.
//   - stepInterval: delay between KPI extraction steps.
//   - log: structured logger; nil falls back to the default.
func NewRunner(store *Store, stepInterval time.Duration, log *logger.Logger) *Runner {
	if stepInterval <= 0 {
		stepInterval = 500 * time.Millisecond
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Runner{
		store:        store,
		stepInterval: stepInterval,
		log:          log.WithComponent("runner"),
		cancels:      make(map[string]chan struct{}),
	}
}

// Launch starts the audit identified by id in the background. The record
// must already exist in the store.
func (r *Runner) Launch(id, collegeName string) {
	cancel := make(chan struct{})

	r.mu.Lock()
	r.cancels[id] = cancel
	r.mu.Unlock()

	go r.run(id, collegeName, cancel)
}

// Cancel requests cancellation of a running audit. Returns false when the
// runner no longer tracks the id, in which case the store decides whether
// the audit was already terminal.
func (r *Runner) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancel, ok := r.cancels[id]
	if !ok {
		return false
	}
	close(cancel)
	delete(r.cancels, id)
	return true
}

func (r *Runner) detach(id string) {
	r.mu.Lock()
	delete(r.cancels, id)
	r.mu.Unlock()
}

func (r *Runner) run(id, collegeName string, cancel <-chan struct{}) {
	defer r.detach(id)
	log := r.log.WithAuditID(id).WithCollege(collegeName)
	log.Info("Audit started")

	start := time.Now()
	schema := auditSchema
	results := make([]domain.KPIResult, 0, len(schema))

	for i, kpi := range schema {
		select {
		case <-cancel:
			if err := r.store.Cancel(id); err != nil && err != ErrAlreadyTerminal {
				log.WithError(err).Error("Failed to persist cancellation")
			}
			log.Info("Audit cancelled")
			return
		case <-time.After(r.stepInterval):
		}

		results = append(results, simulateResult(collegeName, kpi))

		progress := (i + 1) * 100 / len(schema)
		message := fmt.Sprintf("Searching official sources for %s...", kpi.Name)
		if err := r.store.UpdateProgress(id, progress, message); err != nil {
			log.WithError(err).Warn("Failed to persist progress")
		}
	}

	summary := report.Summarize(results)
	timeTaken := time.Since(start).Seconds()
	if err := r.store.Complete(id, results, summary, timeTaken); err != nil {
		if err == ErrAlreadyTerminal {
			log.Info("Audit finished after cancellation, result discarded")
			return
		}
		log.WithError(err).Error("Failed to persist results")
		if ferr := r.store.Fail(id, "Internal error while saving results"); ferr != nil && ferr != ErrAlreadyTerminal {
			log.WithError(ferr).Error("Failed to mark audit failed")
		}
		return
	}
	log.WithField("time_taken_seconds", timeTaken).Info("Audit completed")
}

// simulateResult fabricates a plausible extraction for one KPI. The fnv
// hash of college+KPI keeps the outcome stable across runs.
func simulateResult(collegeName string, kpi KPI) domain.KPIResult {
	h := fnv.New32a()
	h.Write([]byte(collegeName))
	h.Write([]byte{0})
	h.Write([]byte(kpi.Name))
	seed := h.Sum32()

	res := domain.KPIResult{
		KPIName:  kpi.Name,
		Category: kpi.Category,
	}

	// Roughly one in five KPIs comes back empty-handed.
	if len(kpi.Samples) == 0 || seed%5 == 0 {
		res.Value = domain.ScalarValue("Data Not Found")
		res.SourceURL = "N/A"
		res.SourceType = "none"
		res.SystemConfidence = domain.ConfidenceLow
		res.Recency = domain.RecencyUnknown
		return res
	}

	res.Value = domain.ScalarValue(kpi.Samples[int(seed)%len(kpi.Samples)])
	res.EvidenceQuote = fmt.Sprintf("%s reports %s of %s in its latest disclosure.",
		collegeName, kpi.Name, res.Value.SentinelText())

	if seed%3 == 0 {
		res.SourceURL = "https://en.wikipedia.org/wiki/" + urlSlug(collegeName)
		res.SourceType = "wikipedia"
		res.SourcePriority = domain.PriorityMedium
		res.SystemConfidence = domain.ConfidenceMedium
	} else {
		res.SourceURL = "https://www.nirfindia.org/Rankings"
		res.SourceType = "official"
		res.SourcePriority = domain.PriorityHigh
		res.SystemConfidence = domain.ConfidenceHigh
	}
	res.LLMConfidence = res.SystemConfidence
	res.LLMConfidenceReason = "Value stated verbatim in the cited source."
	res.DataYear = fmt.Sprintf("%d", 2023+int(seed%3))
	res.Recency = domain.RecencyHigh
	return res
}

func urlSlug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == ' ' {
			out = append(out, '_')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
