package logsource

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

type fakeLogsClient struct {
	pages    []*cloudwatchlogs.FilterLogEventsOutput
	failAt   int // 1-based call number that returns an error, 0 = never
	calls    int
	lastSeen *cloudwatchlogs.FilterLogEventsInput
}

func (f *fakeLogsClient) FilterLogEvents(_ context.Context, params *cloudwatchlogs.FilterLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	f.calls++
	f.lastSeen = params
	if f.failAt > 0 && f.calls == f.failAt {
		return nil, errors.New("throttled")
	}
	if f.calls > len(f.pages) {
		return &cloudwatchlogs.FilterLogEventsOutput{}, nil
	}
	return f.pages[f.calls-1], nil
}

func page(token string, messages ...string) *cloudwatchlogs.FilterLogEventsOutput {
	out := &cloudwatchlogs.FilterLogEventsOutput{}
	base := time.Date(2025, 8, 23, 10, 0, 0, 0, time.UTC).UnixMilli()
	for i, msg := range messages {
		ts := base + int64(i)*1000
		m := msg
		out.Events = append(out.Events, types.FilteredLogEvent{Timestamp: &ts, Message: &m})
	}
	if token != "" {
		out.NextToken = &token
	}
	return out
}

func testWindow() Window {
	return Window{
		Start: time.Date(2025, 8, 23, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 8, 24, 23, 59, 59, 0, time.UTC),
	}
}

func TestFetchWindowFollowsPagination(t *testing.T) {
	client := &fakeLogsClient{pages: []*cloudwatchlogs.FilterLogEventsOutput{
		page("tok-1", "ERROR one", "ERROR two"),
		page("tok-2", "ERROR three"),
		page("", "ERROR four"),
	}}
	src := NewCloudWatchSourceWithClient(client, "/app/prod", CloudWatchOptions{}, nil)

	events, err := src.FetchWindow(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("FetchWindow() error = %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if client.calls != 3 {
		t.Errorf("client calls = %d, want 3", client.calls)
	}
	if events[0].Message != "ERROR one" || events[3].Message != "ERROR four" {
		t.Errorf("events out of order: %v", events)
	}
	if events[0].Timestamp == "" {
		t.Error("timestamp not formatted")
	}
}

func TestFetchWindowRespectsMaxIterations(t *testing.T) {
	// Every page advertises another token; the iteration cap must stop us.
	var pages []*cloudwatchlogs.FilterLogEventsOutput
	for i := 0; i < 10; i++ {
		pages = append(pages, page("more", "ERROR again"))
	}
	client := &fakeLogsClient{pages: pages}
	src := NewCloudWatchSourceWithClient(client, "/app/prod", CloudWatchOptions{MaxIterations: 3}, nil)

	events, err := src.FetchWindow(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("FetchWindow() error = %v", err)
	}
	if client.calls != 3 {
		t.Errorf("client calls = %d, want 3", client.calls)
	}
	if len(events) != 3 {
		t.Errorf("got %d events, want 3", len(events))
	}
}

func TestFetchWindowRespectsMaxEntries(t *testing.T) {
	client := &fakeLogsClient{pages: []*cloudwatchlogs.FilterLogEventsOutput{
		page("tok-1", "ERROR a", "ERROR b"),
		page("tok-2", "ERROR c", "ERROR d"),
		page("tok-3", "ERROR e"),
	}}
	src := NewCloudWatchSourceWithClient(client, "/app/prod", CloudWatchOptions{MaxEntries: 3}, nil)

	events, err := src.FetchWindow(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("FetchWindow() error = %v", err)
	}
	// The cap is checked after each page, so the second page completes.
	if len(events) != 4 {
		t.Errorf("got %d events, want 4", len(events))
	}
	if client.calls != 2 {
		t.Errorf("client calls = %d, want 2", client.calls)
	}
}

func TestFetchWindowPartialResultsOnError(t *testing.T) {
	client := &fakeLogsClient{
		pages:  []*cloudwatchlogs.FilterLogEventsOutput{page("tok-1", "ERROR a")},
		failAt: 2,
	}
	src := NewCloudWatchSourceWithClient(client, "/app/prod", CloudWatchOptions{}, nil)

	events, err := src.FetchWindow(context.Background(), testWindow())
	if err == nil {
		t.Fatal("expected error from second page")
	}
	if len(events) != 1 {
		t.Errorf("got %d partial events, want 1", len(events))
	}
	if !strings.Contains(err.Error(), "/app/prod") {
		t.Errorf("error %q should name the log group", err)
	}
}

func TestFetchWindowSendsFilterAndBounds(t *testing.T) {
	client := &fakeLogsClient{pages: []*cloudwatchlogs.FilterLogEventsOutput{page("")}}
	src := NewCloudWatchSourceWithClient(client, "/app/prod", CloudWatchOptions{}, nil)

	w := testWindow()
	if _, err := src.FetchWindow(context.Background(), w); err != nil {
		t.Fatalf("FetchWindow() error = %v", err)
	}

	in := client.lastSeen
	if in == nil {
		t.Fatal("no request captured")
	}
	if *in.FilterPattern != DefaultFilterPattern {
		t.Errorf("FilterPattern = %q, want %q", *in.FilterPattern, DefaultFilterPattern)
	}
	if *in.StartTime != w.Start.UnixMilli() || *in.EndTime != w.End.UnixMilli() {
		t.Errorf("bounds = [%d, %d], want [%d, %d]", *in.StartTime, *in.EndTime, w.Start.UnixMilli(), w.End.UnixMilli())
	}
	if *in.Limit != DefaultPageSize {
		t.Errorf("Limit = %d, want %d", *in.Limit, DefaultPageSize)
	}
}

func TestDefaultWindow(t *testing.T) {
	now := time.Date(2025, 8, 25, 14, 30, 0, 0, time.UTC)
	w := DefaultWindow(now)

	wantStart := time.Date(2025, 8, 23, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 8, 24, 23, 59, 59, 0, time.UTC)
	if !w.Start.Equal(wantStart) || !w.End.Equal(wantEnd) {
		t.Errorf("DefaultWindow = [%v, %v], want [%v, %v]", w.Start, w.End, wantStart, wantEnd)
	}
}

func TestSyntheticFetchError(t *testing.T) {
	ev := SyntheticFetchError("/app/prod", errors.New("timeout"), time.Date(2025, 8, 25, 1, 2, 3, 0, time.UTC))
	if ev.Timestamp != "2025-08-25T01:02:03" {
		t.Errorf("Timestamp = %q", ev.Timestamp)
	}
	if want := "Log fetch error from /app/prod: timeout"; ev.Message != want {
		t.Errorf("Message = %q, want %q", ev.Message, want)
	}
}
