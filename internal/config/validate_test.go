package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

/*
TestValidatePipeline_SampleIsClean verifies that the generated sample pipeline
produces no issues at all.
*/
func TestValidatePipeline_SampleIsClean(t *testing.T) {
	issues := ValidatePipeline(Sample("data"))
	if len(issues) != 0 {
		t.Fatalf("got %d issues; want 0: %+v", len(issues), issues)
	}
}

/*
TestValidatePipeline_MissingJob verifies that an empty job is an error.
*/
func TestValidatePipeline_MissingJob(t *testing.T) {
	p := Sample("data")
	p.Job = "  "

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "job", "job must not be empty") {
		t.Fatalf("expected SeverityError for job; got issues: %+v", issues)
	}
	if !HasErrors(issues) {
		t.Fatalf("HasErrors = false; want true")
	}
}

/*
TestValidatePipeline_SourceLocation verifies that each relation is checked for
a location and reported under its own path.
*/
func TestValidatePipeline_SourceLocation(t *testing.T) {
	p := Sample("data")
	p.Sources.PaidTransactions.Location = ""

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "sources.paid_transactions.location", "non-empty location") {
		t.Fatalf("expected location error; got %+v", issues)
	}
}

/*
TestValidatePipeline_SourceParser covers unsupported parser kinds and
multi-character delimiters.
*/
func TestValidatePipeline_SourceParser(t *testing.T) {
	p := Sample("data")
	p.Sources.LeadLogs.Parser.Kind = "xml"
	p.Sources.UserLogs.Parser.Options = Options{"comma": ";;"}

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "sources.lead_logs.parser.kind", "unsupported parser kind") {
		t.Fatalf("expected parser kind error; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "sources.user_logs.parser.options.comma", "single character") {
		t.Fatalf("expected comma error; got %+v", issues)
	}
}

/*
TestValidatePipeline_Output verifies output kind, path and sample checks.
*/
func TestValidatePipeline_Output(t *testing.T) {
	p := Sample("data")
	p.Output = Output{Kind: "parquet", Path: "", SampleRows: -1}

	issues := ValidatePipeline(p)
	for _, path := range []string{"output.kind", "output.path", "output.sample_rows"} {
		if !hasIssue(t, issues, SeverityError, path, "") {
			t.Fatalf("expected error at %s; got %+v", path, issues)
		}
	}
}

/*
TestValidatePipeline_Storage verifies that a configured sink needs a DSN and a
table, and that unknown kinds only warn.
*/
func TestValidatePipeline_Storage(t *testing.T) {
	p := Sample("data")
	p.Storage = Storage{Kind: "oracle"}

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityWarning, "storage.kind", "unknown storage kind") {
		t.Fatalf("expected storage.kind warning; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "storage.db.dsn", "must not be empty") {
		t.Fatalf("expected dsn error; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "storage.db.table", "must not be empty") {
		t.Fatalf("expected table error; got %+v", issues)
	}

	p.Storage = Storage{Kind: "none"}
	if issues := ValidatePipeline(p); len(issues) != 0 {
		t.Fatalf("storage none: got %+v; want no issues", issues)
	}
}

/*
TestValidatePipeline_Publish verifies that amqp publishing requires a URL and
an exchange.
*/
func TestValidatePipeline_Publish(t *testing.T) {
	p := Sample("data")
	p.Publish = Publish{Kind: "amqp"}

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "publish.amqp.url", "") {
		t.Fatalf("expected url error; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "publish.amqp.exchange", "") {
		t.Fatalf("expected exchange error; got %+v", issues)
	}

	p.Publish = Publish{Kind: "kafka"}
	if !hasIssue(t, ValidatePipeline(p), SeverityError, "publish.kind", "unsupported publish kind") {
		t.Fatalf("expected publish.kind error")
	}
}

/*
TestValidatePipeline_RuntimeAndMetrics covers negative runtime knobs and
metrics backends missing their endpoints.
*/
func TestValidatePipeline_RuntimeAndMetrics(t *testing.T) {
	p := Sample("data")
	p.Runtime = RuntimeConfig{ReaderWorkers: -1, BatchSize: -5}
	p.Metrics = Metrics{Backend: "datadog"}

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "runtime.reader_workers", "negative") {
		t.Fatalf("expected reader_workers error; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "runtime.batch_size", "negative") {
		t.Fatalf("expected batch_size error; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "metrics.datadog_addr", "metrics will be disabled") {
		t.Fatalf("expected datadog warning; got %+v", issues)
	}

	p.Runtime = RuntimeConfig{ReaderWorkers: 12}
	p.Metrics = Metrics{Backend: "statsd"}
	issues = ValidatePipeline(p)
	if HasErrors(issues) {
		t.Fatalf("got errors %+v; want only warnings", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "runtime.reader_workers", "stay idle") {
		t.Fatalf("expected reader_workers warning; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "metrics.backend", "unknown metrics backend") {
		t.Fatalf("expected backend warning; got %+v", issues)
	}
}
