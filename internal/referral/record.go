package referral

import (
	"time"

	"referralreport/internal/table"
)

// Merged column names read by the rules.
const (
	ColReferralID        = "referral_id"
	ColReferralSource    = "referral_source"
	ColReferralAt        = "referral_at"
	ColTransactionStatus = "transaction_status"
	ColTransactionType   = "transaction_type"
	ColTransactionAt     = "transaction_at"
	ColRewardValue       = "reward_value"
	ColDescription       = "description"
	ColIsRewardGranted   = "is_reward_granted"
	ColIsDeleted         = "is_deleted"
)

// Record is the typed view of one merged row. A nil field means the column
// is absent, the cell is null, or the value could not be converted.
type Record struct {
	ReferralID        *string
	ReferralSource    *string
	ReferralAt        *time.Time
	TransactionStatus *string
	TransactionType   *string
	TransactionAt     *time.Time
	RewardValue       *float64
	Description       *string

	// Flags keep their canonical text; see Facts for how they are read.
	RewardGranted *string
	Deleted       *string
}

// Binder builds Records from rows of one merged table. Column positions are
// resolved once.
type Binder struct {
	referralID, source, referralAt         int
	txnStatus, txnType, txnAt              int
	rewardValue, description, granted, del int
}

// NewBinder resolves the rule columns of t. Missing columns bind to nothing.
func NewBinder(t *table.Table) *Binder {
	return &Binder{
		referralID:  t.Index(ColReferralID),
		source:      t.Index(ColReferralSource),
		referralAt:  t.Index(ColReferralAt),
		txnStatus:   t.Index(ColTransactionStatus),
		txnType:     t.Index(ColTransactionType),
		txnAt:       t.Index(ColTransactionAt),
		rewardValue: t.Index(ColRewardValue),
		description: t.Index(ColDescription),
		granted:     t.Index(ColIsRewardGranted),
		del:         t.Index(ColIsDeleted),
	}
}

// Bind converts one row.
func (b *Binder) Bind(row []table.Value) Record {
	return Record{
		ReferralID:        textAt(row, b.referralID),
		ReferralSource:    textAt(row, b.source),
		ReferralAt:        timeAt(row, b.referralAt),
		TransactionStatus: textAt(row, b.txnStatus),
		TransactionType:   textAt(row, b.txnType),
		TransactionAt:     timeAt(row, b.txnAt),
		RewardValue:       numberAt(row, b.rewardValue),
		Description:       textAt(row, b.description),
		RewardGranted:     textAt(row, b.granted),
		Deleted:           textAt(row, b.del),
	}
}

func cell(row []table.Value, i int) table.Value {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

func textAt(row []table.Value, i int) *string {
	s, ok := table.Text(cell(row, i))
	if !ok {
		return nil
	}
	return &s
}

func timeAt(row []table.Value, i int) *time.Time {
	t, ok := table.Time(cell(row, i))
	if !ok {
		return nil
	}
	return &t
}

func numberAt(row []table.Value, i int) *float64 {
	f, ok := table.Number(cell(row, i))
	if !ok {
		return nil
	}
	return &f
}
