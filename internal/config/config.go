// Package config defines the configuration model for the referral report
// pipeline: where the seven source relations live, how they are parsed, and
// where the projected report is written.
//
// Pipelines are loaded from YAML or JSON files with environment overrides
// (see Load) and linted with ValidatePipeline before a run.
//
// Example (trimmed):
//
//	job: referral_report
//	sources:
//	  user_referrals:
//	    location: data/user_referrals.csv
//	    parser: { kind: csv, options: { comma: "," } }
//	output: { kind: csv, path: out/referral_business_logic_report.csv }
//	storage: { kind: sqlite, db: { dsn: out/report.db, table: referral_report, auto_create_table: true } }
package config

// Canonical names of the seven source relations.
const (
	SourceLeadLogs             = "lead_logs"
	SourceUserReferrals        = "user_referrals"
	SourceUserReferralLogs     = "user_referral_logs"
	SourceUserLogs             = "user_logs"
	SourceUserReferralStatuses = "user_referral_statuses"
	SourceReferralRewards      = "referral_rewards"
	SourcePaidTransactions     = "paid_transactions"
)

// Pipeline is the top-level configuration object.
type Pipeline struct {
	// Job names the run for logs, metrics and the summary event.
	Job string `mapstructure:"job" json:"job" yaml:"job"`

	Sources Sources       `mapstructure:"sources" json:"sources" yaml:"sources"`
	Output  Output        `mapstructure:"output" json:"output" yaml:"output"`
	Storage Storage       `mapstructure:"storage" json:"storage" yaml:"storage"`
	Publish Publish       `mapstructure:"publish" json:"publish" yaml:"publish"`
	Runtime RuntimeConfig `mapstructure:"runtime" json:"runtime" yaml:"runtime"`
	Metrics Metrics       `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
}

// Sources holds one Source per input relation.
type Sources struct {
	LeadLogs             Source `mapstructure:"lead_logs" json:"lead_logs" yaml:"lead_logs"`
	UserReferrals        Source `mapstructure:"user_referrals" json:"user_referrals" yaml:"user_referrals"`
	UserReferralLogs     Source `mapstructure:"user_referral_logs" json:"user_referral_logs" yaml:"user_referral_logs"`
	UserLogs             Source `mapstructure:"user_logs" json:"user_logs" yaml:"user_logs"`
	UserReferralStatuses Source `mapstructure:"user_referral_statuses" json:"user_referral_statuses" yaml:"user_referral_statuses"`
	ReferralRewards      Source `mapstructure:"referral_rewards" json:"referral_rewards" yaml:"referral_rewards"`
	PaidTransactions     Source `mapstructure:"paid_transactions" json:"paid_transactions" yaml:"paid_transactions"`
}

// NamedSource pairs a Source with its canonical relation name.
type NamedSource struct {
	Name   string
	Source Source
}

// Named returns the sources in a fixed order.
func (s Sources) Named() []NamedSource {
	return []NamedSource{
		{SourceLeadLogs, s.LeadLogs},
		{SourceUserReferrals, s.UserReferrals},
		{SourceUserReferralLogs, s.UserReferralLogs},
		{SourceUserLogs, s.UserLogs},
		{SourceUserReferralStatuses, s.UserReferralStatuses},
		{SourceReferralRewards, s.ReferralRewards},
		{SourcePaidTransactions, s.PaidTransactions},
	}
}

// Source describes one delimited-text input.
type Source struct {
	// Location is a filesystem path or a file:// or http(s):// URL.
	Location string `mapstructure:"location" json:"location" yaml:"location"`
	Parser   Parser `mapstructure:"parser" json:"parser" yaml:"parser"`
}

// Parser selects how a source is decoded. Only "csv" is implemented; an
// empty kind means csv.
type Parser struct {
	Kind string `mapstructure:"kind" json:"kind" yaml:"kind"`

	// Options for csv: comma (string), lazy_quotes (bool),
	// trim_leading_space (bool), header_map (object).
	Options Options `mapstructure:"options" json:"options,omitempty" yaml:"options,omitempty"`
}

// Output is the authoritative report sink.
type Output struct {
	// Kind is "csv".
	Kind string `mapstructure:"kind" json:"kind" yaml:"kind"`
	Path string `mapstructure:"path" json:"path" yaml:"path"`

	// SampleRows is how many report rows are echoed to the console after the
	// write; 0 disables the sample.
	SampleRows int `mapstructure:"sample_rows" json:"sample_rows" yaml:"sample_rows"`
}

// Storage is an optional SQL sink for the projected report.
type Storage struct {
	// Kind is one of sqlite, postgres, mssql, mysql. Empty or "none" disables it.
	Kind string   `mapstructure:"kind" json:"kind" yaml:"kind"`
	DB   DBConfig `mapstructure:"db" json:"db" yaml:"db"`
}

// DBConfig configures the SQL sink.
type DBConfig struct {
	DSN string `mapstructure:"dsn" json:"dsn" yaml:"dsn"`

	// Table may be schema-qualified, e.g. "public.referral_report".
	Table string `mapstructure:"table" json:"table" yaml:"table"`

	// AutoCreateTable issues CREATE TABLE IF NOT EXISTS before loading.
	AutoCreateTable bool `mapstructure:"auto_create_table" json:"auto_create_table" yaml:"auto_create_table"`

	// Replace deletes existing rows before loading the new report.
	Replace bool `mapstructure:"replace" json:"replace" yaml:"replace"`
}

// Publish configures the optional run-summary event.
type Publish struct {
	// Kind is "amqp". Empty or "none" disables publishing.
	Kind string     `mapstructure:"kind" json:"kind" yaml:"kind"`
	AMQP AMQPConfig `mapstructure:"amqp" json:"amqp" yaml:"amqp"`
}

// AMQPConfig addresses a fanout exchange.
type AMQPConfig struct {
	URL      string `mapstructure:"url" json:"url" yaml:"url"`
	Exchange string `mapstructure:"exchange" json:"exchange" yaml:"exchange"`
}

// RuntimeConfig controls loading concurrency and sink batching.
type RuntimeConfig struct {
	// ReaderWorkers bounds how many sources are read at once. 0 means 1.
	ReaderWorkers int `mapstructure:"reader_workers" json:"reader_workers" yaml:"reader_workers"`

	// BatchSize is the number of rows per SQL sink batch. 0 means 1000.
	BatchSize int `mapstructure:"batch_size" json:"batch_size" yaml:"batch_size"`
}

// Metrics selects a metrics backend: pushgateway, datadog or none.
type Metrics struct {
	Backend        string `mapstructure:"backend" json:"backend" yaml:"backend"`
	PushgatewayURL string `mapstructure:"pushgateway_url" json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `mapstructure:"datadog_addr" json:"datadog_addr" yaml:"datadog_addr"`
}

// Options is a small helper to fetch typed values from a free-form map. It
// performs minimal coercion and returns the default when a key is absent or
// of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the bool value for key or def. The strings "true" and "false"
// are accepted because environment overrides arrive as text.
func (o Options) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		switch v {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return def
}

// Int returns the int value for key or def. Decoders disagree on numeric
// types, so int, int64 and float64 are all accepted.
func (o Options) Int(key string, def int) int {
	switch n := o[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// Rune returns the first rune of a string value for key, or def when the key
// is missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if s, ok := o[key].(string); ok && s != "" {
		return []rune(s)[0]
	}
	return def
}

// StringMap returns key as a map of strings. Non-string values are skipped.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	switch m := o[key].(type) {
	case map[string]any:
		for k, v := range m {
			if s, ok := v.(string); ok {
				res[k] = s
			}
		}
	case map[string]string:
		for k, v := range m {
			res[k] = v
		}
	}
	return res
}
