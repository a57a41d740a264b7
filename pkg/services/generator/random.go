package generator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
)

var (
	randomReceivers = []string{
		"ABC Company", "XYZ Ltd", "KPLC", "Safaricom Ltd", "Water Services",
		"Bank Account", "M-Pesa Agent", "Retail Store", "Service Provider", "Individual",
	}
	randomSenders = []string{
		"John Doe", "Jane Smith", "Samuel Otieno", "David Kamau", "Mary Wanjiku",
		"Robert Omondi", "Grace Njoki", "George Maina", "Carol Wangari", "Thomas Mwangi",
		"Ann Karimi", "Joseph Muli", "Faith Wambui", "Patricia Chepkorir", "James Mwangi",
	}
	// amountBands are the small, medium and large ranges, picked uniformly.
	amountBands = [][2]float64{{50, 500}, {500, 2000}, {2000, 10000}}
	randomEpoch = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
)

const randomWindowMinutes = 30 * 24 * 60

// randomGenerator spreads transactions over January 2023 with uniform types.
type randomGenerator struct {
	rng *rand.Rand
}

func (g *randomGenerator) Generate(n int) domain.Table {
	table := newTable(n)
	for range n {
		start := randomEpoch.Add(time.Duration(g.rng.IntN(randomWindowMinutes+1)) * time.Minute)
		band := pick(g.rng, amountBands)
		amount := band[0] + g.rng.Float64()*(band[1]-band[0])
		id := "M" + letter(g.rng, "ABCDE") + digits(g.rng, 3) + letter(g.rng, "FGHIJ")

		table.Records = append(table.Records, newRecord(
			start,
			1+g.rng.IntN(30),
			pick(g.rng, transactionTypes),
			id,
			fmt.Sprintf("%.2f", amount),
			pick(g.rng, randomSenders),
			pick(g.rng, randomReceivers),
		))
	}
	return table
}
