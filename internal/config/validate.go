package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into the
// config, e.g. "sources.user_referrals.location".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// touch the filesystem or network; unreadable sources are reported by the run.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs, metrics and summary events",
		})
	}
	for _, ns := range p.Sources.Named() {
		issues = append(issues, validateSource(ns.Name, ns.Source)...)
	}
	issues = append(issues, validateOutput(p.Output)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validatePublish(p.Publish)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

func validateSource(name string, s Source) []Issue {
	var issues []Issue
	base := "sources." + name

	if strings.TrimSpace(s.Location) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     base + ".location",
			Message:  fmt.Sprintf("source %s requires a non-empty location", name),
		})
	}

	switch strings.ToLower(strings.TrimSpace(s.Parser.Kind)) {
	case "", "csv":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     base + ".parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q; only csv is implemented", s.Parser.Kind),
		})
	}

	if comma := s.Parser.Options.String("comma", ""); len([]rune(comma)) > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     base + ".parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", comma),
		})
	}

	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue

	switch strings.ToLower(strings.TrimSpace(o.Kind)) {
	case "", "csv":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.kind",
			Message:  fmt.Sprintf("unsupported output kind %q; only csv is implemented", o.Kind),
		})
	}
	if strings.TrimSpace(o.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.path",
			Message:  "output.path must not be empty",
		})
	}
	if o.SampleRows < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.sample_rows",
			Message:  "sample_rows must not be negative",
		})
	}

	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	kind := strings.ToLower(strings.TrimSpace(s.Kind))
	if kind == "" || kind == "none" {
		return nil
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	}

	return issues
}

func validatePublish(p Publish) []Issue {
	var issues []Issue

	switch strings.ToLower(strings.TrimSpace(p.Kind)) {
	case "", "none":
		return nil
	case "amqp":
	default:
		return []Issue{{
			Severity: SeverityError,
			Path:     "publish.kind",
			Message:  fmt.Sprintf("unsupported publish kind %q; only amqp is implemented", p.Kind),
		}}
	}

	if strings.TrimSpace(p.AMQP.URL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "publish.amqp.url",
			Message:  "publish.amqp.url must not be empty",
		})
	}
	if strings.TrimSpace(p.AMQP.Exchange) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "publish.amqp.exchange",
			Message:  "publish.amqp.exchange must not be empty",
		})
	}

	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.ReaderWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.reader_workers",
			Message:  "reader_workers must not be negative",
		})
	}
	if r.ReaderWorkers > 7 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.reader_workers",
			Message:  fmt.Sprintf("reader_workers=%d exceeds the number of sources (7); extra workers stay idle", r.ReaderWorkers),
		})
	}
	if r.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  "batch_size must not be negative",
		})
	}

	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch strings.ToLower(strings.TrimSpace(m.Backend)) {
	case "", "none":
		return nil
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend without a URL; metrics will be disabled",
			}}
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			return []Issue{{
				Severity: SeverityWarning,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend without an agent address; metrics will be disabled",
			}}
		}
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		}}
	}
	return nil
}
