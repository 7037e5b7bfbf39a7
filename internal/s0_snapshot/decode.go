package s0_snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/wonny/geflip/internal/contracts"
)

// mappingEntry mirrors one element of mapping.json; only id/name/limit are used
type mappingEntry struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name"`
	Limit *int64  `json:"limit"`
}

type latestPayload struct {
	Data map[string]*latestEntry `json:"data"`
}

type latestEntry struct {
	High *float64 `json:"high"`
	Low  *float64 `json:"low"`
}

type hourlyPayload struct {
	Data      map[string]*hourlyEntry `json:"data"`
	Timestamp *int64                  `json:"timestamp"`
}

type hourlyEntry struct {
	AvgHighPrice    *float64 `json:"avgHighPrice"`
	AvgLowPrice     *float64 `json:"avgLowPrice"`
	HighPriceVolume *float64 `json:"highPriceVolume"`
	LowPriceVolume  *float64 `json:"lowPriceVolume"`
	Timestamp       *int64   `json:"timestamp"`
}

// DecodeMapping parses mapping.json content
// ⭐ SSOT: mapping 스키마 검증은 여기서만
func DecodeMapping(path string, data []byte) (map[int64]contracts.ItemMetadata, error) {
	var entries []*mappingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, contracts.Malformed(path, "%s", describeJSONError(err))
	}
	if entries == nil {
		return nil, contracts.Malformed(path, "expected an array of items")
	}

	out := make(map[int64]contracts.ItemMetadata, len(entries))
	for i, e := range entries {
		if e == nil {
			return nil, contracts.Malformed(path, "entry %d: null item", i)
		}
		if e.ID == nil {
			return nil, contracts.Malformed(path, "entry %d: missing id", i)
		}
		if e.Name == nil {
			return nil, contracts.Malformed(path, "item %d: missing name", *e.ID)
		}
		if _, dup := out[*e.ID]; dup {
			return nil, contracts.Malformed(path, "item %d: duplicate id", *e.ID)
		}

		out[*e.ID] = contracts.ItemMetadata{
			ID:         *e.ID,
			Name:       *e.Name,
			TradeLimit: e.Limit,
		}
	}

	return out, nil
}

// DecodeLatest parses latest.json content
// high/low는 null 허용 (불완전 시세는 S2 병합에서 제외)
func DecodeLatest(path string, data []byte) (map[int64]contracts.InstantQuote, error) {
	var payload latestPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, contracts.Malformed(path, "%s", describeJSONError(err))
	}
	if payload.Data == nil {
		return nil, contracts.Malformed(path, `missing "data" object`)
	}

	out := make(map[int64]contracts.InstantQuote, len(payload.Data))
	for key, e := range payload.Data {
		id, err := parseItemID(key)
		if err != nil {
			return nil, contracts.Malformed(path, "%v", err)
		}
		if e == nil {
			return nil, contracts.Malformed(path, "item %d: null quote", id)
		}
		// "1"과 "01"은 같은 id
		if _, dup := out[id]; dup {
			return nil, contracts.Malformed(path, "item %d: duplicate id", id)
		}

		out[id] = contracts.InstantQuote{
			ID:      id,
			CurHigh: e.High,
			CurLow:  e.Low,
		}
	}

	return out, nil
}

// DecodeHourly parses a 1h-<ts>.json snapshot
// fileTimestamp is the timestamp embedded in the file name, used as last fallback
func DecodeHourly(path string, fileTimestamp int64, data []byte) (*contracts.HourlySnapshot, error) {
	var payload hourlyPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, contracts.Malformed(path, "%s", describeJSONError(err))
	}
	if payload.Data == nil {
		return nil, contracts.Malformed(path, `missing "data" object`)
	}

	// record timestamp → file timestamp → file name 순서
	snapshotTS := fileTimestamp
	if payload.Timestamp != nil {
		snapshotTS = *payload.Timestamp
	}

	snapshot := &contracts.HourlySnapshot{
		Path:      path,
		Timestamp: fileTimestamp,
		Windows:   make(map[int64]contracts.HourlyWindow, len(payload.Data)),
	}

	for key, e := range payload.Data {
		id, err := parseItemID(key)
		if err != nil {
			return nil, contracts.Malformed(path, "%v", err)
		}
		if e == nil {
			return nil, contracts.Malformed(path, "item %d: null window", id)
		}
		if _, dup := snapshot.Windows[id]; dup {
			return nil, contracts.Malformed(path, "item %d: duplicate id", id)
		}

		w := contracts.HourlyWindow{
			ID:              id,
			AvgHighPrice:    e.AvgHighPrice,
			AvgLowPrice:     e.AvgLowPrice,
			HighVolume:      valueOrZero(e.HighPriceVolume),
			LowVolume:       valueOrZero(e.LowPriceVolume),
			WindowTimestamp: snapshotTS,
		}
		if e.Timestamp != nil {
			w.WindowTimestamp = *e.Timestamp
		}

		snapshot.Windows[id] = w
	}

	return snapshot, nil
}

// parseItemID converts a JSON object key into an item id
func parseItemID(key string) (int64, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("item key %q is not an integer id", key)
	}
	return id, nil
}

// describeJSONError turns encoding/json errors into a short reason
func describeJSONError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field != "" {
			return fmt.Sprintf("field %q: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("invalid JSON at offset %d: %v", syntaxErr.Offset, syntaxErr)
	}

	return err.Error()
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
