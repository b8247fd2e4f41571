package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"referralreport/internal/config"
)

/*
End-to-end benchmark over generated local CSVs. Only the file sink is used so
throughput does not depend on external systems.
*/

func writeBenchFixtures(b *testing.B, referrals int) config.Pipeline {
	b.Helper()
	dir := b.TempDir()

	var ur, rl, pt strings.Builder
	ur.WriteString("referral_id,referral_source,referral_at,referrer_id,referee_id,transaction_id,referral_reward_id,user_referral_status_id\n")
	rl.WriteString("id,user_referral_id,is_reward_granted\n")
	pt.WriteString("transaction_id,transaction_status,transaction_at,transaction_type\n")
	for i := 0; i < referrals; i++ {
		fmt.Fprintf(&ur, "r%d,User Sign Up,2024-01-05 10:30:00,u%d,l%d,t%d,1,1\n", i, i%50, i, i)
		fmt.Fprintf(&rl, "%d,r%d,True\n", i, i)
		fmt.Fprintf(&pt, "t%d,PAID,2024-01-20 09:00:00,NEW\n", i)
	}
	var ul strings.Builder
	ul.WriteString("id,user_id,is_deleted\n")
	for u := 0; u < 50; u++ {
		fmt.Fprintf(&ul, "%d,u%d,False\n", u, u)
	}

	files := map[string]string{
		"user_referrals.csv":         ur.String(),
		"user_referral_logs.csv":     rl.String(),
		"paid_transactions.csv":      pt.String(),
		"user_logs.csv":              ul.String(),
		"referral_rewards.csv":       "id,reward_value\n1,50000\n",
		"user_referral_statuses.csv": "id,description\n1,Berhasil\n",
		"lead_log.csv":               "id,lead_id\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			b.Fatalf("write %s: %v", name, err)
		}
	}
	p := config.Sample(dir)
	p.Output.Path = filepath.Join(dir, "report.csv")
	p.Output.SampleRows = 0
	p.Runtime.ReaderWorkers = 4
	return p
}

func BenchmarkRunPipeline_10k(b *testing.B) {
	p := writeBenchFixtures(b, 10_000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := runPipeline(context.Background(), p, nil, io.Discard)
		if err != nil {
			b.Fatal(err)
		}
		if res.Summary.Valid != 10_000 {
			b.Fatalf("valid = %d, want 10000", res.Summary.Valid)
		}
	}
}
