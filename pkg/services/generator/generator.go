package generator

import (
	"database/sql"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
)

const (
	KindRandom    = "random"
	KindRealistic = "realistic"
)

// Generator produces sample transaction tables. A generator built with a given seed
// always produces the same table.
type Generator interface {
	Generate(n int) domain.Table
}

// New returns the generator registered under kind.
func New(kind string, seed uint64) (Generator, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	switch kind {
	case KindRandom:
		return &randomGenerator{rng: rng}, nil
	case KindRealistic:
		return &realisticGenerator{rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown generator %q, expected one of %v", kind, Kinds())
	}
}

func Kinds() []string {
	kinds := []string{KindRandom, KindRealistic}
	sort.Strings(kinds)
	return kinds
}

var transactionTypes = []string{"Pay Bill", "Send Money", "Withdrawal", "Deposit", "Airtime Purchase"}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.IntN(len(values))]
}

func digits(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rng.IntN(10))
	}
	return string(b)
}

func letter(rng *rand.Rand, alphabet string) string {
	return string(alphabet[rng.IntN(len(alphabet))])
}

func newRecord(start time.Time, seconds int, transactionType, id, amount, sender, receiver string) domain.TransactionRecord {
	return domain.TransactionRecord{
		StartTime: sql.NullTime{Time: start, Valid: true},
		EndTime:   sql.NullTime{Time: start.Add(time.Duration(seconds) * time.Second), Valid: true},
		Type:      sql.NullString{String: transactionType, Valid: true},
		ID:        sql.NullString{String: id, Valid: true},
		Amount:    sql.NullString{String: amount, Valid: true},
		Sender:    sql.NullString{String: sender, Valid: true},
		Receiver:  sql.NullString{String: receiver, Valid: true},
	}
}

func newTable(n int) domain.Table {
	return domain.Table{
		Columns: append([]string{}, domain.Columns...),
		Records: make([]domain.TransactionRecord, 0, n),
	}
}
