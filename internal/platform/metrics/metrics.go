package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-wide counters. A nil *Collector ignores every call.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	payslipsGenerated   uint64
	payslipsRegenerated uint64
	payslipsPublished   uint64
	documentsRendered   uint64
	registersExported   uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// PayslipGenerated counts a successful generate. existing marks an overwrite of a stored payslip.
func (c *Collector) PayslipGenerated(existing bool) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.payslipsGenerated, 1)
	if existing {
		atomic.AddUint64(&c.payslipsRegenerated, 1)
	}
}

func (c *Collector) PayslipPublished() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.payslipsPublished, 1)
}

func (c *Collector) DocumentRendered() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.documentsRendered, 1)
}

func (c *Collector) RegisterExported() {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.registersExported, 1)
}

func (c *Collector) Snapshot() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":            total,
		"errorsTotal":              errs,
		"rateLimitedTotal":         limited,
		"avgDurationMs":            avg,
		"totalDurationMs":          totalMs,
		"payslipsGeneratedTotal":   atomic.LoadUint64(&c.payslipsGenerated),
		"payslipsRegeneratedTotal": atomic.LoadUint64(&c.payslipsRegenerated),
		"payslipsPublishedTotal":   atomic.LoadUint64(&c.payslipsPublished),
		"documentsRenderedTotal":   atomic.LoadUint64(&c.documentsRendered),
		"registersExportedTotal":   atomic.LoadUint64(&c.registersExported),
	}
}
