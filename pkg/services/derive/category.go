package derive

import (
	"database/sql"
	"strings"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
)

type categoryRule struct {
	matches  func(lower string) bool
	category domain.TypeCategory
}

// categoryRules are evaluated in order and the first match wins, so a label containing
// both "pay" and "withdrawal" is a bill payment.
var categoryRules = []categoryRule{
	{containsAny("pay", "bill"), domain.CategoryBillPayment},
	{containsAll("send", "money"), domain.CategoryPeerToPeer},
	{containsAny("withdrawal"), domain.CategoryCashOut},
	{containsAny("deposit"), domain.CategoryCashIn},
	{containsAny("airtime"), domain.CategoryAirtimeData},
}

func Category(transactionType sql.NullString) domain.TypeCategory {
	if !transactionType.Valid {
		return domain.CategoryOther
	}
	lower := strings.ToLower(transactionType.String)
	for _, rule := range categoryRules {
		if rule.matches(lower) {
			return rule.category
		}
	}
	return domain.CategoryOther
}

func containsAny(substrings ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range substrings {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

func containsAll(substrings ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range substrings {
			if !strings.Contains(s, sub) {
				return false
			}
		}
		return true
	}
}
