package report

import (
	"sort"
	"strconv"
	"time"

	"farmdash/internal/farm"
	"farmdash/internal/table"
)

// Metric is one headline figure for a category.
type Metric struct {
	Title string
	Value string
}

// Metrics summarises records of one category. Unparseable numbers are
// skipped.
func Metrics(schema *table.Schema, records []table.Record) []Metric {
	out := []Metric{{Title: "Entries", Value: strconv.Itoa(len(records))}}
	if len(records) == 0 {
		return out
	}
	switch schema.Category {
	case farm.FeedUsage:
		total, _ := sum(records, "Quantity (kg)")
		out = append(out,
			Metric{"Total feed", formatFloat(total) + " kg"},
			Metric{"Latest feeding", latest(schema, records, "Quantity (kg)") + " kg"},
		)
	case farm.Mortality:
		deaths, _ := sum(records, "Number of Deaths")
		out = append(out,
			Metric{"Total deaths", formatFloat(deaths)},
			Metric{"Most common cause", mostCommon(schema, records, "Cause of Death")},
		)
	case farm.EggProduction:
		total, _ := sum(records, "Total Eggs")
		broken, _ := sum(records, "Broken Eggs")
		rate := "0%"
		if total > 0 {
			rate = strconv.FormatFloat(broken/total*100, 'f', 1, 64) + "%"
		}
		out = append(out,
			Metric{"Total eggs", formatFloat(total)},
			Metric{"Broken eggs", formatFloat(broken)},
			Metric{"Broken rate", rate},
		)
	case farm.Environment:
		out = append(out,
			Metric{"Average temperature", average(records, "Temperature") + "°C"},
			Metric{"Average humidity", average(records, "Humidity") + "%"},
			Metric{"Latest temperature", latest(schema, records, "Temperature") + "°C"},
		)
	}
	return out
}

func numbers(records []table.Record, label string) []float64 {
	var out []float64
	for _, r := range records {
		f, err := strconv.ParseFloat(r.Value(label), 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

func sum(records []table.Record, label string) (float64, int) {
	var total float64
	vals := numbers(records, label)
	for _, v := range vals {
		total += v
	}
	return total, len(vals)
}

func average(records []table.Record, label string) string {
	total, n := sum(records, label)
	if n == 0 {
		return table.Placeholder
	}
	return strconv.FormatFloat(total/float64(n), 'f', 1, 64)
}

// latest picks the value from the most recent dated record. Ties go to the
// record listed last.
func latest(schema *table.Schema, records []table.Record, label string) string {
	col, ok := schema.DateColumn()
	if !ok {
		return records[len(records)-1].Value(label)
	}
	best := -1
	var bestDay time.Time
	for i, r := range records {
		day, err := time.Parse(table.DateLayout, r.Value(col.Label))
		if err != nil {
			continue
		}
		if best < 0 || !day.Before(bestDay) {
			best, bestDay = i, day
		}
	}
	if best < 0 {
		return records[len(records)-1].Value(label)
	}
	return records[best].Value(label)
}

func mostCommon(schema *table.Schema, records []table.Record, label string) string {
	counts := map[string]int{}
	for _, r := range records {
		if v := r.Value(label); v != table.Placeholder {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return table.Placeholder
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if c, ok := schema.Column(label); ok {
		return c.OptionLabel(keys[0])
	}
	return keys[0]
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
