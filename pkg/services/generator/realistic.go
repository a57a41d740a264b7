package generator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
)

var (
	receiversByType = map[string][]string{
		"Pay Bill": {
			"KPLC-Kenya Power", "Safaricom PLC", "Daima Sacco", "KRA Services", "Chania River Water",
			"NHIF Kenya", "University of Nairobi", "Co-op Bank Loan", "KRA PAYMENTS", "Safaricom Postpaid",
		},
		"Send Money": {
			"John Omondi", "Daniel Njoroge", "Mike Waweru", "Faith Mutua", "Joseph Muthomi",
			"Business Partner", "School Fees Payment", "KCB Bank", "Family Support", "Contractor Payment",
		},
		"Withdrawal": {
			"T-Money Agent - Kamukunji", "Safaricom Shop - Thika Road", "Family Bank Agent",
			"Co-op Bank Agent", "Equity Bank Agent", "MPesa Agent - Junction",
			"Equity Bank - Airport", "Family Bank - CBD", "Co-op Bank - Westlands", "Safaricom Shop - South B",
		},
		"Deposit":          {"M-Pesa"},
		"Airtime Purchase": {"Safaricom Ltd", "Airtel Kenya", "Telkom Kenya"},
	}
	realisticSenders = []string{
		"Mercy Wanjiku Maina", "James Odhiambo", "Grace Njeri Mwangi", "Samuel Otieno Kipchirchir",
		"Mary Wanjiku Kamau", "Jane Wanjiku", "Sarah Mumbi", "Esther Wangari", "Peter Kimani",
		"Vincent Kiprotich", "Cynthia Chepkemoi", "Brian Kipkemboi", "Priscilla Akinyi",
		"Joseph Karanja", "Rose Chebet", "Dorothy Jelagat", "Paul Kipyego", "Lucy Chepkorir",
		"Charles Kiprotich Koech", "Beatrice Moraa", "Jane Wambui Kerubo", "Joyce Jepkemoi",
		"Business Revenue", "Sales Income", "Freelance Payment", "Investment Return", "Data Bundle",
	}
	realisticAmounts = []int{
		50, 100, 200, 300, 500, 800, 1000, 1200, 1500, 2000, 2500, 3000, 4000, 5000,
		6000, 8000, 10000, 15000, 20000, 25000, 30000, 50000, 100000,
	}
	realisticEpoch = time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
)

const (
	openingHour      = 8
	closingHour      = 19
	recordsPerDay    = 10
	maxRealisticSecs = 15
)

// realisticGenerator follows observed usage: business-hour traffic, round amounts and
// receivers that match the transaction type.
type realisticGenerator struct {
	rng *rand.Rand
}

func (g *realisticGenerator) Generate(n int) domain.Table {
	table := newTable(n)
	for i := range n {
		offset := time.Duration(openingHour+g.rng.IntN(closingHour-openingHour+1))*time.Hour +
			time.Duration(g.rng.IntN(60))*time.Minute +
			time.Duration(g.rng.IntN(60))*time.Second
		start := realisticEpoch.AddDate(0, 0, i/recordsPerDay).Add(offset)

		transactionType := pick(g.rng, transactionTypes)
		id := fmt.Sprintf("L%s%s%s%02d", letter(g.rng, "ABCDEF"), digits(g.rng, 2), letter(g.rng, "GHIJKL"), i+1)

		table.Records = append(table.Records, newRecord(
			start,
			1+g.rng.IntN(maxRealisticSecs),
			transactionType,
			id,
			fmt.Sprintf("%d.00", pick(g.rng, realisticAmounts)),
			pick(g.rng, realisticSenders),
			pick(g.rng, receiversByType[transactionType]),
		))
	}
	return table
}
