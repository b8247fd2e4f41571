package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Marshal renders p as "yaml" or "json".
func Marshal(p Pipeline, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		return yaml.Marshal(p)
	case "json":
		b, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// Sample returns a ready-to-edit pipeline that reads the seven CSV exports
// from dir and writes the report next to them.
func Sample(dir string) Pipeline {
	if dir == "" {
		dir = "data"
	}
	csvSource := func(file string) Source {
		return Source{
			Location: strings.TrimSuffix(dir, "/") + "/" + file,
			Parser:   Parser{Kind: "csv", Options: Options{"comma": ","}},
		}
	}
	return Pipeline{
		Job: "referral_report",
		Sources: Sources{
			LeadLogs:             csvSource("lead_log.csv"),
			UserReferrals:        csvSource("user_referrals.csv"),
			UserReferralLogs:     csvSource("user_referral_logs.csv"),
			UserLogs:             csvSource("user_logs.csv"),
			UserReferralStatuses: csvSource("user_referral_statuses.csv"),
			ReferralRewards:      csvSource("referral_rewards.csv"),
			PaidTransactions:     csvSource("paid_transactions.csv"),
		},
		Output: Output{
			Kind:       "csv",
			Path:       "referral_business_logic_report.csv",
			SampleRows: 10,
		},
		Storage: Storage{Kind: "none", DB: DBConfig{Table: "referral_report", AutoCreateTable: true}},
		Publish: Publish{Kind: "none"},
		Runtime: RuntimeConfig{ReaderWorkers: 1, BatchSize: 1000},
		Metrics: Metrics{Backend: "none"},
	}
}
