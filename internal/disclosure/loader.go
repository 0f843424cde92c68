package disclosure

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/jonathan/pts-radar/internal/logger"
	"github.com/jonathan/pts-radar/internal/metrics"
	"github.com/jonathan/pts-radar/internal/parsing"
	"github.com/jonathan/pts-radar/internal/types"
)

// listKeys are the top-level keys that may hold the item list, in priority order.
var listKeys = []string{"items", "result"}

// itemWrapperKey wraps each item in some feed variants: {"Tdnet": {...}}.
const itemWrapperKey = "Tdnet"

// Feed item field names.
const (
	fieldCompanyCode = "company_code"
	fieldCompanyName = "company_name"
	fieldTitle       = "title"
	fieldDocumentURL = "document_url"
	fieldPubDate     = "pubdate"
)

// LoadStats describes what happened to the items of one payload.
type LoadStats struct {
	// ListKey is the key the item list was read from; empty for a top-level array.
	ListKey       string `json:"list_key,omitempty"`
	Items         int    `json:"items"`
	Malformed     int    `json:"malformed"`
	DroppedNoCode int    `json:"dropped_no_code"`
	DroppedNoURL  int    `json:"dropped_no_url"`
	Duplicates    int    `json:"duplicates"`
	Undated       int    `json:"undated"`
	Retained      int    `json:"retained"`
	Repaired      bool   `json:"repaired"`
	Unreadable    bool   `json:"unreadable"`
}

// Loader converts feed payloads into disclosure rows.
type Loader struct {
	logger  logger.Logger
	metrics *metrics.Manager
}

// NewLoader creates a Loader. Both arguments may be nil.
func NewLoader(log logger.Logger, m *metrics.Manager) *Loader {
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{logger: log, metrics: m}
}

// Load converts one JSON payload into disclosure rows in feed order.
// It never fails: an undecodable payload yields zero rows, items without
// a code or document URL are dropped, and repeated (code, document URL)
// pairs keep only their first occurrence. DayTag is left for Tag to assign.
func (l *Loader) Load(payload []byte) ([]types.DisclosureRow, LoadStats) {
	var stats LoadStats

	doc, repaired, err := decode(payload)
	if err != nil {
		stats.Unreadable = true
		l.logger.Warn("disclosure payload unreadable, treating as empty",
			logger.Int("bytes", len(payload)),
			logger.Error(err))
		return nil, stats
	}
	if repaired {
		stats.Repaired = true
		l.metrics.PayloadRepaired()
		l.logger.Warn("disclosure payload decoded only after JSON repair",
			logger.Int("bytes", len(payload)))
	}

	items, key := itemList(doc)
	stats.ListKey = key
	stats.Items = len(items)

	rows := make([]types.DisclosureRow, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, raw := range items {
		item, ok := unwrapItem(raw)
		if !ok {
			stats.Malformed++
			continue
		}

		code := parsing.CanonicalCode(textOf(item[fieldCompanyCode]))
		if code == "" {
			stats.DroppedNoCode++
			continue
		}
		docURL := textOf(item[fieldDocumentURL])
		if docURL == "" {
			stats.DroppedNoURL++
			continue
		}

		key := code + "\x00" + docURL
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		pubRaw := textOf(item[fieldPubDate])
		row := types.DisclosureRow{
			Code:         code,
			CompanyName:  textOf(item[fieldCompanyName]),
			Title:        textOf(item[fieldTitle]),
			DocumentURL:  docURL,
			PublishedRaw: pubRaw,
			PublishedAt:  parsing.OptionalDate(pubRaw),
			DayTag:       types.DayTagNone,
		}
		if row.PublishedAt == nil {
			stats.Undated++
		}
		rows = append(rows, row)
	}

	stats.Retained = len(rows)
	l.metrics.DisclosuresLoaded(len(rows))
	l.metrics.DisclosuresDropped(metrics.ReasonNoCode, stats.DroppedNoCode)
	l.metrics.DisclosuresDropped(metrics.ReasonNoURL, stats.DroppedNoURL)
	l.metrics.DisclosuresDropped(metrics.ReasonDuplicate, stats.Duplicates)
	l.logger.Debug("disclosure payload loaded",
		logger.Int("items", stats.Items),
		logger.Int("retained", stats.Retained),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("undated", stats.Undated))

	return rows, stats
}

// decode parses payload, falling back to JSON repair for truncated or sloppy output.
func decode(payload []byte) (any, bool, error) {
	doc, err := decodeStrict(payload)
	if err == nil {
		return doc, false, nil
	}

	fixed, repairErr := jsonrepair.JSONRepair(string(payload))
	if repairErr != nil {
		return nil, false, err
	}
	doc, repairErr = decodeStrict([]byte(fixed))
	if repairErr != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func decodeStrict(payload []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// itemList picks the item list: a top-level array is used directly, otherwise
// the first non-null list key wins. A candidate that is not a list is empty.
func itemList(doc any) ([]any, string) {
	obj, ok := doc.(map[string]any)
	if !ok {
		list, _ := doc.([]any)
		return list, ""
	}

	for _, key := range listKeys {
		v := obj[key]
		if v == nil {
			continue
		}
		list, _ := v.([]any)
		return list, key
	}
	return nil, ""
}

func unwrapItem(raw any) (map[string]any, bool) {
	item, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	if inner, wrapped := item[itemWrapperKey].(map[string]any); wrapped && len(item) == 1 {
		return inner, true
	}
	return item, true
}

// textOf renders a scalar JSON value as trimmed text. Missing, null and
// composite values read as empty, as does the literal "nan".
func textOf(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case json.Number:
		s = x.String()
	case bool:
		s = strconv.FormatBool(x)
	default:
		return ""
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}
