package s2_merge

import (
	"sort"

	"github.com/wonny/geflip/internal/contracts"
	"github.com/wonny/geflip/pkg/logger"
)

// Merger implements S2: left join of quotes with windows and metadata
// ⭐ SSOT: 병합은 여기서만 (instant quote 기준 left join)
type Merger struct {
	logger *logger.Logger
}

// NewMerger creates a new merger
func NewMerger(log *logger.Logger) *Merger {
	return &Merger{
		logger: log.Module("s2_merge"),
	}
}

// Merge joins every complete instant quote with its aggregated window and metadata
// Items without a quote are excluded; incomplete quotes are dropped.
// Output is ordered by item id so later stages see a stable row order.
func (m *Merger) Merge(
	quotes map[int64]contracts.InstantQuote,
	windows map[int64]contracts.AggregatedWindow,
	mapping map[int64]contracts.ItemMetadata,
) []contracts.MergedRecord {
	ids := make([]int64, 0, len(quotes))
	for id := range quotes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	records := make([]contracts.MergedRecord, 0, len(ids))
	incomplete, noWindow, unmapped := 0, 0, 0

	for _, id := range ids {
		q := quotes[id]
		if !q.Complete() {
			incomplete++
			continue
		}

		rec := contracts.MergedRecord{
			ID:      id,
			CurHigh: *q.CurHigh,
			CurLow:  *q.CurLow,
		}

		if w, ok := windows[id]; ok {
			w := w
			rec.Window = &w
		} else {
			noWindow++
		}

		if meta, ok := mapping[id]; ok {
			meta := meta
			rec.Metadata = &meta
		} else {
			unmapped++
		}

		records = append(records, rec)
	}

	m.logger.WithFields(map[string]interface{}{
		"quotes":     len(quotes),
		"merged":     len(records),
		"incomplete": incomplete,
		"no_window":  noWindow,
		"unmapped":   unmapped,
	}).Info("Merge completed")

	return records
}
