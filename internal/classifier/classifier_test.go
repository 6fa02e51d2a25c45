package classifier_test

import (
	"strings"
	"testing"
	"time"

	"rowsweep/internal/classifier"
	"rowsweep/internal/config"
	"rowsweep/internal/sheet"
)

var testNow = time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

func testContext(t *testing.T, headers []string) classifier.Context {
	t.Helper()
	cfg := config.Default()
	ctx, err := classifier.NewContext(sheet.NewHeader(headers), &cfg, testNow)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	return ctx
}

func defaultHeaders() []string {
	return []string{"Member ID", "Status", "Type", "Review", "Payments Q3", "Aug 2026"}
}

func TestNewContextMissingHeader(t *testing.T) {
	cfg := config.Default()
	header := sheet.NewHeader([]string{"Member ID", "Status", "Type"})
	if _, err := classifier.NewContext(header, &cfg, testNow); err == nil {
		t.Fatal("expected error for missing review header")
	}
}

func TestNextMonthStart(t *testing.T) {
	got := classifier.NextMonthStart(time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC))
	want := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextMonthStart = %v, want %v", got, want)
	}
}

func TestSkipsNonTargetStatus(t *testing.T) {
	ctx := testContext(t, defaultHeaders())
	_, matched := ctx.ClassifyRow([]string{"A1", "Active", "Standard", "", "", ""}, nil)
	if matched {
		t.Fatal("active row must be skipped")
	}
}

func TestRoutesRelocationType(t *testing.T) {
	ctx := testContext(t, defaultHeaders())

	// Differently punctuated spellings of the type all route to relocations.
	for _, typeValue := range []string{"Relo App", "relo-app", "Relo. App"} {
		c, matched := ctx.ClassifyRow([]string{"ABC123", "Dropped", typeValue, "", "", ""}, nil)
		if !matched {
			t.Fatalf("%q: row did not match", typeValue)
		}
		if c.Decision != classifier.DecisionRouteRelocation {
			t.Fatalf("%q: decision = %v, want relocation", typeValue, c.Decision)
		}
		if c.Key != "ABC123" {
			t.Fatalf("key = %q", c.Key)
		}
	}
}

func TestRoutesArchiveByDefault(t *testing.T) {
	ctx := testContext(t, defaultHeaders())
	c, matched := ctx.ClassifyRow([]string{"A1", "dropped", "Standard", "", "", ""}, nil)
	if !matched || c.Decision != classifier.DecisionRouteArchive {
		t.Fatalf("decision = %+v matched=%v, want archive", c, matched)
	}
}

func TestPaymentBlankBesideMonthRejects(t *testing.T) {
	ctx := testContext(t, defaultHeaders())

	c, matched := ctx.ClassifyRow([]string{"A1", "Dropped", "Standard", "", "", "45.00"}, nil)
	if !matched || c.Decision != classifier.DecisionReject {
		t.Fatalf("expected reject, got %+v matched=%v", c, matched)
	}
	if len(c.Reasons) != 1 || !strings.Contains(c.Reasons[0], "Aug 2026") {
		t.Fatalf("unexpected reasons: %v", c.Reasons)
	}

	// Both cells blank, or both filled, passes.
	if c, _ := ctx.ClassifyRow([]string{"A1", "Dropped", "Standard", "", "set", "45.00"}, nil); c.Decision == classifier.DecisionReject {
		t.Fatalf("filled pair must not reject: %v", c.Reasons)
	}
	if c, _ := ctx.ClassifyRow([]string{"A1", "Dropped", "Standard", "", "", ""}, nil); c.Decision == classifier.DecisionReject {
		t.Fatalf("empty pair must not reject: %v", c.Reasons)
	}
}

func TestReviewRules(t *testing.T) {
	ctx := testContext(t, defaultHeaders())

	cases := []struct {
		review string
		reject bool
	}{
		{"", false},
		{"NED", true},
		{"ned ", true},
		{"9/1/2026", true},          // first of next month
		{"2026-10-15", true},        // beyond next month
		{"8/14/2026", false},        // in the past
		{"Jan 2, 2026", false},      // earlier this year
		{"call them back", false},   // unparseable: no opinion
		{"maybe 9/1/2026 ok", false}, // unparseable: no opinion
	}
	for _, tc := range cases {
		c, matched := ctx.ClassifyRow([]string{"A1", "Dropped", "Standard", tc.review, "", ""}, nil)
		if !matched {
			t.Fatalf("%q: row did not match", tc.review)
		}
		got := c.Decision == classifier.DecisionReject
		if got != tc.reject {
			t.Fatalf("review %q: reject=%v, want %v (reasons %v)", tc.review, got, tc.reject, c.Reasons)
		}
	}
}

func TestDuplicateKeyStillQueued(t *testing.T) {
	ctx := testContext(t, defaultHeaders())
	existing := map[string]struct{}{"A1": {}}

	c, matched := ctx.ClassifyRow([]string{"a1 ", "Dropped", "Standard", "", "", ""}, existing)
	if !matched || c.Decision != classifier.DecisionDuplicate {
		t.Fatalf("expected duplicate, got %+v", c)
	}
}

func TestBlankKeyRejects(t *testing.T) {
	ctx := testContext(t, defaultHeaders())
	c, matched := ctx.ClassifyRow([]string{"  ", "Dropped", "Standard", "", "", ""}, nil)
	if !matched || c.Decision != classifier.DecisionReject {
		t.Fatalf("expected reject for blank key, got %+v", c)
	}
}

func TestRunAggregates(t *testing.T) {
	ctx := testContext(t, defaultHeaders())
	existing := map[string]struct{}{"D4": {}}

	rows := [][]string{
		{"A1", "Active", "Standard", "", "", ""},          // skipped
		{"B2", "Dropped", "Relo App", "", "", ""},         // relocations
		{"C3", "Dropped", "Standard", "", "", ""},         // archive
		{"D4", "Dropped", "Standard", "", "", ""},         // duplicate
		{"E5", "Dropped", "Standard", "NED", "", ""},      // rejected
		{"F6", "Dropped", "Standard", "", "", "12.00"},    // rejected (payment)
	}

	result := classifier.Run(ctx, rows, existing)

	if result.Scanned != 5 {
		t.Fatalf("Scanned = %d, want 5", result.Scanned)
	}
	if len(result.RoutedArchive) != 1 || result.RoutedArchive[0][0] != "C3" {
		t.Fatalf("RoutedArchive = %v", result.RoutedArchive)
	}
	if len(result.RoutedRelocations) != 1 || result.RoutedRelocations[0][0] != "B2" {
		t.Fatalf("RoutedRelocations = %v", result.RoutedRelocations)
	}
	wantQueue := []string{"B2", "C3", "D4"}
	if len(result.QueueKeys) != len(wantQueue) {
		t.Fatalf("QueueKeys = %v, want %v", result.QueueKeys, wantQueue)
	}
	for i, key := range wantQueue {
		if result.QueueKeys[i] != key {
			t.Fatalf("QueueKeys[%d] = %q, want %q", i, result.QueueKeys[i], key)
		}
	}
	if result.Rejected != 2 {
		t.Fatalf("Rejected = %d, want 2", result.Rejected)
	}
	if len(result.Exceptions) != 3 {
		t.Fatalf("Exceptions = %v", result.Exceptions)
	}
	if result.Exceptions[0].Key != "summary" || !strings.Contains(result.Exceptions[0].Reason, "queued=3") {
		t.Fatalf("missing summary entry: %+v", result.Exceptions[0])
	}
}
