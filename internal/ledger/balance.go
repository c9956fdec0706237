package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/importops-backend/pkg/db/models"
	"github.com/angelmondragon/importops-backend/pkg/enums"
)

// StatementLine is one entry together with the running balance after it.
type StatementLine struct {
	Entry   models.LedgerEntry `json:"entry"`
	Balance decimal.Decimal    `json:"balance"`
}

// ComputeBalance folds a party's entries into its running balance.
//
// Positive means we owe the party; negative means the party owes us. Only the
// transaction types relevant to the party class are counted, oldest first.
// ok is false when no relevant entry exists so callers can fall back to the
// stored balance instead of reporting zero.
func ComputeBalance(entries []models.LedgerEntry, party enums.EntityModel) (decimal.Decimal, bool) {
	lines := RunningBalances(entries, party)
	if len(lines) == 0 {
		return decimal.Zero, false
	}
	return lines[len(lines)-1].Balance, true
}

// RunningBalances returns the relevant entries in chronological order with the
// balance after each one. It is the same fold ComputeBalance uses.
func RunningBalances(entries []models.LedgerEntry, party enums.EntityModel) []StatementLine {
	relevant := make([]models.LedgerEntry, 0, len(entries))
	for _, entry := range entries {
		if party.Accepts(entry.TransactionType) {
			relevant = append(relevant, entry)
		}
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		a, b := sortKey(relevant[i]), sortKey(relevant[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		return relevant[i].Sequence < relevant[j].Sequence
	})

	lines := make([]StatementLine, 0, len(relevant))
	balance := decimal.Zero
	for _, entry := range relevant {
		balance = balance.Add(entry.Debit).Sub(entry.Credit)
		lines = append(lines, StatementLine{Entry: entry, Balance: balance})
	}
	return lines
}

func sortKey(entry models.LedgerEntry) time.Time {
	if !entry.CreatedAt.IsZero() {
		return entry.CreatedAt
	}
	return entry.Date
}
