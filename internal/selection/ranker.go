package selection

import (
	"context"
	"sort"

	"github.com/wonny/geflip/internal/contracts"
	"github.com/wonny/geflip/pkg/logger"
)

// Ranker implements S4: two disjoint top-K lists
// ⭐ SSOT: S4 랭킹 로직은 여기서만
type Ranker struct {
	topK   int
	logger *logger.Logger
}

// NewRanker creates a new ranker keeping at most topK entries per category
func NewRanker(topK int, log *logger.Logger) *Ranker {
	return &Ranker{
		topK:   topK,
		logger: log.Module("selection"),
	}
}

// Rank partitions candidates into high-value and high-volume lists
// A candidate with both cuts belongs to high-value only.
func (r *Ranker) Rank(ctx context.Context, candidates []contracts.Candidate) (*contracts.RankedLists, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	highValue := make([]contracts.MergedRecord, 0)
	highVolume := make([]contracts.MergedRecord, 0)

	for _, c := range candidates {
		switch {
		case c.ValueCut:
			highValue = append(highValue, c.Record)
		case c.VolumeCut:
			highVolume = append(highVolume, c.Record)
		}
	}

	// high-value: net margin 내림차순, 동점은 id 오름차순
	sortRecords(highValue, func(rec *contracts.MergedRecord) float64 {
		return rec.Metrics.NetMargin
	})
	// high-volume: profit at limit 내림차순, 동점은 id 오름차순
	sortRecords(highVolume, func(rec *contracts.MergedRecord) float64 {
		return rec.Metrics.ProfitAtLimit
	})

	lists := &contracts.RankedLists{
		HighValue:  r.assign(highValue, contracts.CategoryHighValue),
		HighVolume: r.assign(highVolume, contracts.CategoryHighVolume),
	}

	fields := map[string]interface{}{
		"candidates":  len(candidates),
		"high_value":  len(lists.HighValue),
		"high_volume": len(lists.HighVolume),
	}
	if len(lists.HighValue) > 0 {
		fields["top_value_id"] = lists.HighValue[0].ID
	}
	if len(lists.HighVolume) > 0 {
		fields["top_volume_id"] = lists.HighVolume[0].ID
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return lists, nil
}

// assign truncates to top-K and assigns 1-based ranks
func (r *Ranker) assign(records []contracts.MergedRecord, category contracts.Category) []contracts.Opportunity {
	if r.topK > 0 && len(records) > r.topK {
		records = records[:r.topK]
	}

	out := make([]contracts.Opportunity, 0, len(records))
	for i, rec := range records {
		out = append(out, contracts.NewOpportunity(rec, category, i+1))
	}
	return out
}

func sortRecords(records []contracts.MergedRecord, key func(*contracts.MergedRecord) float64) {
	sort.SliceStable(records, func(i, j int) bool {
		ki, kj := key(&records[i]), key(&records[j])
		if ki != kj {
			return ki > kj
		}
		return records[i].ID < records[j].ID
	})
}
