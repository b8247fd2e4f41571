package merge

import (
	"fmt"

	"referralreport/internal/bitmap"
	"referralreport/internal/config"
	"referralreport/internal/table"
)

// Relations holds the seven normalized inputs.
type Relations struct {
	Referrals    *table.Table // user_referrals, the base
	Rewards      *table.Table // referral_rewards
	Statuses     *table.Table // user_referral_statuses
	UserLogs     *table.Table // user_logs
	Transactions *table.Table // paid_transactions
	Leads        *table.Table // lead_logs
	ReferralLogs *table.Table // user_referral_logs
}

// Result is the merged wide relation plus per-join diagnostics.
type Result struct {
	Table *table.Table

	// Origin maps each merged row to its row in Referrals.
	Origin []int
	Joins  []JoinStats
}

// FanOut returns the total number of duplicated rows across all joins.
func (r Result) FanOut() int {
	n := 0
	for _, j := range r.Joins {
		n += j.FanOut
	}
	return n
}

// keyColumns lists the columns each relation must provide to take part in
// the joins, either as its own key or as a later join's left key.
var keyColumns = map[string][]string{
	config.SourceUserReferrals:        {"referral_id", "referral_reward_id", "user_referral_status_id", "referrer_id", "referee_id"},
	config.SourceReferralRewards:      {"id"},
	config.SourceUserReferralStatuses: {"id"},
	config.SourceUserLogs:             {"user_id"},
	config.SourcePaidTransactions:     {"transaction_id"},
	config.SourceLeadLogs:             {"lead_id"},
	config.SourceUserReferralLogs:     {"user_referral_id"},
}

// Plan returns the joins in execution order. Each join's left side is the
// result of every join before it.
func Plan(rel Relations) []JoinSpec {
	return []JoinSpec{
		{Name: config.SourceReferralRewards, Right: rel.Rewards, LeftKey: "referral_reward_id", RightKey: "id", Suffix: "_reward"},
		{Name: config.SourceUserReferralStatuses, Right: rel.Statuses, LeftKey: "user_referral_status_id", RightKey: "id", Suffix: "_status"},
		{Name: config.SourceUserLogs, Right: rel.UserLogs, LeftKey: "referrer_id", RightKey: "user_id", Suffix: "_referrer"},
		{Name: config.SourcePaidTransactions, Right: rel.Transactions, LeftKey: "transaction_id", RightKey: "transaction_id", Suffix: "_txn"},
		{Name: config.SourceLeadLogs, Right: rel.Leads, LeftKey: "referee_id", RightKey: "lead_id", Suffix: "_lead"},
		{Name: config.SourceUserReferralLogs, Right: rel.ReferralLogs, LeftKey: "referral_id", RightKey: "user_referral_id", Suffix: "_log"},
	}
}

// Merge runs Plan against rel. Missing key columns fail with *KeyError unless
// the relation lacking them has no rows. Every referral is guaranteed to
// appear in the result at least once.
func Merge(rel Relations) (Result, error) {
	base, err := prepare(config.SourceUserReferrals, rel.Referrals)
	if err != nil {
		return Result{}, err
	}

	cur := base
	origin := make([]int, base.Len())
	for i := range origin {
		origin[i] = i
	}

	var joins []JoinStats
	for _, spec := range Plan(rel) {
		if spec.Right, err = prepare(spec.Name, spec.Right); err != nil {
			return Result{}, err
		}
		next, idx, stats, err := LeftJoin(cur, spec)
		if err != nil {
			return Result{}, fmt.Errorf("join %s: %w", spec.Name, err)
		}
		for i, l := range idx {
			idx[i] = origin[l]
		}
		cur, origin = next, idx
		joins = append(joins, stats)
	}

	seen := bitmap.New()
	for _, o := range origin {
		seen.Add(o)
	}
	if missing := seen.Missing(base.Len()); len(missing) > 0 {
		return Result{}, fmt.Errorf("merge dropped %d referral rows (first at position %d)", len(missing), missing[0])
	}

	return Result{Table: cur, Origin: origin, Joins: joins}, nil
}

// prepare checks a relation's key columns. An empty relation gets any missing
// key columns added so later joins can reference them.
func prepare(name string, t *table.Table) (*table.Table, error) {
	if t == nil {
		t = table.New(name, nil)
	}
	var missing []string
	for _, c := range keyColumns[name] {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return t, nil
	}
	if t.Len() > 0 {
		return nil, &KeyError{Relation: name, Column: missing[0]}
	}
	return table.New(t.Name, append(append([]string(nil), t.Columns...), missing...)), nil
}
