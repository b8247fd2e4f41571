package referral

import (
	"strings"
	"time"
)

// Facts are the defaulted inputs of the validity rule. Text is lower-cased
// and trimmed; missing values take their zero value.
type Facts struct {
	RewardValue   float64
	Status        string
	TxnStatus     string
	TxnType       string
	RewardGranted bool
	Deleted       bool

	// ReferralAt and TransactionAt are zero when unknown.
	ReferralAt    time.Time
	TransactionAt time.Time
}

// flag reports whether the text of a flag means true.
func flag(s *string) bool {
	switch norm(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func norm(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*s))
}

// FactsOf applies the defaults to r.
func FactsOf(r Record) Facts {
	f := Facts{
		Status:        norm(r.Description),
		TxnStatus:     norm(r.TransactionStatus),
		TxnType:       norm(r.TransactionType),
		RewardGranted: flag(r.RewardGranted),
		Deleted:       flag(r.Deleted),
	}
	if r.RewardValue != nil {
		f.RewardValue = *r.RewardValue
	}
	if r.ReferralAt != nil {
		f.ReferralAt = r.ReferralAt.UTC()
	}
	if r.TransactionAt != nil {
		f.TransactionAt = r.TransactionAt.UTC()
	}
	return f
}

// TxnAfterReferral reports whether both timestamps are known and the
// transaction did not happen before the referral.
func (f Facts) TxnAfterReferral() bool {
	return !f.ReferralAt.IsZero() && !f.TransactionAt.IsZero() && !f.TransactionAt.Before(f.ReferralAt)
}

// SameMonth reports whether both timestamps are known and fall in the same
// UTC calendar month.
func (f Facts) SameMonth() bool {
	if f.ReferralAt.IsZero() || f.TransactionAt.IsZero() {
		return false
	}
	ry, rm, _ := f.ReferralAt.Date()
	ty, tm, _ := f.TransactionAt.Date()
	return ry == ty && rm == tm
}

// Valid is the business-logic rule. A row is valid when it is a completed,
// paid, granted referral inside its referral month, or when it is pending or
// failed and carries no reward.
func Valid(f Facts) bool {
	if f.RewardValue > 0 &&
		strings.Contains(f.Status, "berhasil") &&
		strings.Contains(f.TxnStatus, "paid") &&
		strings.Contains(f.TxnType, "new") &&
		f.TxnAfterReferral() &&
		f.SameMonth() &&
		!f.Deleted &&
		f.RewardGranted {
		return true
	}

	if (strings.Contains(f.Status, "menunggu") || strings.Contains(f.Status, "tidak berhasil")) &&
		f.RewardValue == 0 {
		return true
	}

	return false
}

// Evaluate binds the defaults and applies Valid.
func Evaluate(r Record) bool { return Valid(FactsOf(r)) }
