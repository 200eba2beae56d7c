package demodata

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/streamssr/streamssr/internal/section"
)

// Trend is the direction of a stat change, from the reader's perspective.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Stat is one headline metric.
type Stat struct {
	ID     string
	Label  string
	Value  string
	Change string
	Trend  Trend
	Icon   string
}

type statTemplate struct {
	id            string
	label         string
	icon          string
	unit          string
	prefix        string
	base          float64
	multiplier    float64
	lowerIsBetter bool
}

var statTemplates = []statTemplate{
	{id: "users", label: "Active Users", icon: "👥", unit: "M", base: 2, multiplier: 5},
	{id: "revenue", label: "Revenue", icon: "💰", unit: "K", prefix: "$", base: 30, multiplier: 100},
	{id: "performance", label: "Avg. Load Time", icon: "⚡", unit: "s", base: 0.5, multiplier: 1.5, lowerIsBetter: true},
	{id: "satisfaction", label: "Satisfaction", icon: "😊", unit: "%", base: 90, multiplier: 10},
	{id: "orders", label: "Orders Today", icon: "📦", base: 500, multiplier: 2000},
	{id: "visitors", label: "Page Views", icon: "👁️", unit: "K", base: 100, multiplier: 500},
	{id: "conversion", label: "Conversion Rate", icon: "📈", unit: "%", base: 2, multiplier: 8},
	{id: "retention", label: "Retention", icon: "🔄", unit: "%", base: 70, multiplier: 25},
}

// Stats returns 3 to 6 distinct stats in random order.
func Stats(r *rand.Rand) ([]Stat, error) {
	count := 3 + r.IntN(4)
	order := r.Perm(len(statTemplates))

	stats := make([]Stat, 0, count)
	for _, idx := range order[:count] {
		stats = append(stats, newStat(r, statTemplates[idx]))
	}
	return stats, nil
}

func newStat(r *rand.Rand, t statTemplate) Stat {
	value := t.base + r.Float64()*t.multiplier
	change := -30 + r.Float64()*60

	trend := TrendNeutral
	switch {
	case change > 0 && !t.lowerIsBetter, change < 0 && t.lowerIsBetter:
		trend = TrendUp
	case change != 0:
		trend = TrendDown
	}

	var formatted string
	if t.unit == "%" || t.unit == "s" || value < 100 {
		formatted = strconv.FormatFloat(value, 'f', 1, 64)
	} else {
		formatted = strconv.Itoa(int(math.Round(value)))
	}

	sign := ""
	if change >= 0 {
		sign = "+"
	}

	return Stat{
		ID:     fmt.Sprintf("%s-%d", t.id, r.Uint32()),
		Label:  t.label,
		Value:  t.prefix + formatted + t.unit,
		Change: sign + strconv.FormatFloat(change, 'f', 1, 64) + "%",
		Trend:  trend,
		Icon:   t.icon,
	}
}

// StatsSource is the stats section source: 500ms to 2.5s latency.
func StatsSource() section.Source[Stat] {
	return section.Source[Stat]{
		Name:     "stats",
		MinDelay: 500 * time.Millisecond,
		MaxDelay: 2500 * time.Millisecond,
		Generate: Stats,
	}
}
