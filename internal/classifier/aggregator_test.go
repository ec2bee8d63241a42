package classifier

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/anonymizer"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(NewCleaner(nil, nil), NewExtractor(""), anonymizer.Anonymize)
}

func TestAggregatorDedupAcrossDynamicValues(t *testing.T) {
	agg := newTestAggregator()

	// Same error, different UUID, timestamp and numeric id.
	agg.Add(LogEvent{
		Timestamp: "2025-08-24T10:00:00",
		Message:   "IllegalStateException: request 11ef8709-70d4-4670-b102-0242ac110002 at 2025-08-24T10:00:00Z for shift 12345",
	})
	agg.Add(LogEvent{
		Timestamp: "2025-08-24T11:00:00",
		Message:   "IllegalStateException: request 21ef8709-70d4-4670-b102-0242ac110003 at 2025-08-24T11:00:00Z for shift 67890",
	})

	records := agg.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Count != 2 {
		t.Errorf("Count = %d, want 2", records[0].Count)
	}
	if len(records[0].Timestamps) != 2 {
		t.Errorf("Timestamps = %v, want 2 entries", records[0].Timestamps)
	}
}

func TestAggregatorDistinctExceptionTypes(t *testing.T) {
	agg := newTestAggregator()

	agg.Add(LogEvent{Timestamp: "t1", Message: "NullPointerException: cannot read schedule state"})
	agg.Add(LogEvent{Timestamp: "t2", Message: "IllegalStateException: cannot read schedule state"})

	records := agg.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Count != 1 {
			t.Errorf("record %q Count = %d, want 1", rec.Signature, rec.Count)
		}
	}
}

func TestAggregatorRanking(t *testing.T) {
	agg := newTestAggregator()

	add := func(msg string, n int) {
		for i := 0; i < n; i++ {
			agg.Add(LogEvent{Timestamp: fmt.Sprintf("t%d", i), Message: msg})
		}
	}
	add("AException: first failure kind", 5)
	add("BException: second failure kind", 1)
	add("CException: third failure kind", 3)

	records := agg.Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	wantCounts := []int{5, 3, 1}
	for i, want := range wantCounts {
		if records[i].Count != want {
			t.Errorf("records[%d].Count = %d, want %d", i, records[i].Count, want)
		}
	}
}

func TestAggregatorRankingTiesKeepInsertionOrder(t *testing.T) {
	agg := newTestAggregator()

	agg.Add(LogEvent{Timestamp: "t1", Message: "AException: came first"})
	agg.Add(LogEvent{Timestamp: "t2", Message: "BException: came second"})

	records := agg.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Type != "AException" || records[1].Type != "BException" {
		t.Errorf("tie order = [%s %s], want insertion order", records[0].Type, records[1].Type)
	}
}

func TestAggregatorSampleImmutable(t *testing.T) {
	agg := newTestAggregator()

	agg.Add(LogEvent{Timestamp: "t0", Message: "TimeoutException: call timed out after 1500 ms for shift 11111"})
	firstSample := agg.Records()[0].Sample

	for i := 0; i < 100; i++ {
		agg.Add(LogEvent{
			Timestamp: fmt.Sprintf("t%d", i+1),
			Message:   fmt.Sprintf("TimeoutException: call timed out after 9900 ms for shift %05d", i),
		})
	}

	records := agg.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Count != 101 {
		t.Errorf("Count = %d, want 101", records[0].Count)
	}
	if records[0].Sample != firstSample {
		t.Errorf("Sample changed: %q -> %q", firstSample, records[0].Sample)
	}
	if !strings.Contains(records[0].Sample, "11111") {
		t.Errorf("Sample = %q, want the first-seen message", records[0].Sample)
	}
}

func TestAggregatorExcludesAndCleans(t *testing.T) {
	agg := newTestAggregator()

	// Entire entry excluded: known-useless dispatcher source.
	agg.Add(LogEvent{Timestamp: "t1", Message: "ERROR NotificationDispatcherImpl failed to notify"})
	// Cleans down to nothing: only framework noise lines.
	agg.Add(LogEvent{Timestamp: "t2", Message: "at org.springframework.web.method.HandlerMethod.invoke\nat java.base/jdk.internal.reflect.run"})
	// Empty message.
	agg.Add(LogEvent{Timestamp: "t3", Message: "   "})

	if got := agg.Records(); len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
	if agg.TotalEvents() != 3 {
		t.Errorf("TotalEvents = %d, want 3", agg.TotalEvents())
	}
}

func TestAggregatorEmptyInput(t *testing.T) {
	agg := newTestAggregator()
	agg.AddAll(nil)
	if got := agg.Records(); len(got) != 0 {
		t.Errorf("expected empty ranking, got %d records", len(got))
	}
	if agg.UniquePatterns() != 0 {
		t.Errorf("UniquePatterns = %d, want 0", agg.UniquePatterns())
	}
}

func TestAggregatorEndToEndCollapse(t *testing.T) {
	agg := newTestAggregator()

	agg.AddAll([]LogEvent{
		{Timestamp: "t1", Message: "ERROR com.nice.saas.wfo.acme.Foo bad request [ctx] Bad id=12345 tenant=[acme_corp123]"},
		{Timestamp: "t2", Message: "ERROR com.nice.saas.wfo.acme.Foo bad request [ctx] Bad id=67890 tenant=[acme_corp456]"},
	})

	records := agg.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Count != 2 {
		t.Errorf("Count = %d, want 2", rec.Count)
	}
	if rec.Type != "ERROR" {
		t.Errorf("Type = %q, want ERROR", rec.Type)
	}
	if rec.Location != "Foo" {
		t.Errorf("Location = %q, want Foo", rec.Location)
	}
	if strings.Contains(rec.Sample, "acme_corp123") {
		t.Errorf("Sample leaked tenant id: %q", rec.Sample)
	}
}

func TestCleanerNoiseLines(t *testing.T) {
	c := NewCleaner(nil, nil)

	msg := "real error line\nat org.springframework.something.Deep\n\tat com.fasterxml.jackson.databind.Mapper\nsecond real line"
	got := c.Clean(msg)
	want := "real error line\nsecond real line"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanerShouldExclude(t *testing.T) {
	c := NewCleaner(nil, nil)

	if !c.ShouldExclude("") {
		t.Error("empty message should be excluded")
	}
	if !c.ShouldExclude("ERROR NotificationDispatcherImpl boom") {
		t.Error("dispatcher entries should be excluded")
	}
	if c.ShouldExclude("ERROR com.nice.saas.wfo.Foo boom") {
		t.Error("regular entries should not be excluded")
	}
}
