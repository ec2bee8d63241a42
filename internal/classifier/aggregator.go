package classifier

import "sort"

// LogEvent is one raw log entry as produced by a log source.
type LogEvent struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"log_message"`
}

// Record is the per-signature rollup: occurrence count, error identity and
// the first cleaned message seen for the signature. Sample is fixed at
// creation and never overwritten.
type Record struct {
	Signature  string   `json:"signature"`
	Count      int      `json:"count"`
	Type       string   `json:"error_type"`
	Location   string   `json:"location"`
	Sample     string   `json:"sample"`
	Timestamps []string `json:"timestamps,omitempty"`
}

// Aggregator consumes log events and groups them by error signature. Each
// aggregator owns its accumulator map for the duration of one classification
// run; instances are not safe for concurrent use and not reused across runs.
type Aggregator struct {
	cleaner   *Cleaner
	extractor *Extractor
	anonymize func(string) string

	records map[string]*Record
	order   []string
	total   int
}

// NewAggregator builds an aggregator over the given cleaner and extractor.
// anonymize runs on every cleaned message before signature extraction; pass
// nil to skip anonymization.
func NewAggregator(cleaner *Cleaner, extractor *Extractor, anonymize func(string) string) *Aggregator {
	if cleaner == nil {
		cleaner = NewCleaner(nil, nil)
	}
	if extractor == nil {
		extractor = NewExtractor("")
	}
	return &Aggregator{
		cleaner:   cleaner,
		extractor: extractor,
		anonymize: anonymize,
		records:   make(map[string]*Record),
	}
}

// Add classifies one event into the accumulator. Excluded entries and
// entries that clean down to nothing are dropped.
func (a *Aggregator) Add(event LogEvent) {
	a.total++

	if a.cleaner.ShouldExclude(event.Message) {
		return
	}
	cleaned := a.cleaner.Clean(event.Message)
	if cleaned == "" {
		return
	}
	if a.anonymize != nil {
		cleaned = a.anonymize(cleaned)
	}

	sig := a.extractor.Extract(cleaned)

	rec, ok := a.records[sig.Signature]
	if !ok {
		rec = &Record{
			Signature: sig.Signature,
			Type:      sig.Type,
			Location:  sig.Location,
			Sample:    cleaned,
		}
		a.records[sig.Signature] = rec
		a.order = append(a.order, sig.Signature)
	}
	rec.Count++
	rec.Timestamps = append(rec.Timestamps, event.Timestamp)
}

// AddAll classifies a sequence of events in order.
func (a *Aggregator) AddAll(events []LogEvent) {
	for _, ev := range events {
		a.Add(ev)
	}
}

// Records returns the aggregate records ranked by occurrence count
// descending; ties keep first-encounter order. The ranking is deterministic
// given deterministic input order.
func (a *Aggregator) Records() []Record {
	ranked := make([]Record, 0, len(a.order))
	for _, sig := range a.order {
		ranked = append(ranked, *a.records[sig])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

// TotalEvents returns the number of events offered to Add, including
// excluded and empty ones.
func (a *Aggregator) TotalEvents() int { return a.total }

// UniquePatterns returns the number of distinct signatures seen.
func (a *Aggregator) UniquePatterns() int { return len(a.records) }
