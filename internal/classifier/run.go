package classifier

import (
	"fmt"
)

// Exception is one (key, reason) entry in the sync report.
type Exception struct {
	Key    string
	Reason string
}

// Result aggregates one sync run over all source rows.
type Result struct {
	// RoutedArchive and RoutedRelocations hold the full source rows to append
	// to each destination, in scan order.
	RoutedArchive     [][]string
	RoutedRelocations [][]string
	// QueueKeys is every classified, non-rejected key in scan order. The
	// deletion queue dedups on replace.
	QueueKeys []string
	// Exceptions lists rejections; entry 0 is the aggregate summary.
	Exceptions []Exception

	Scanned    int
	Duplicates int
	Rejected   int
}

// Run classifies every source row (rows excludes the header) against the
// precomputed context. existing holds the normalized keys already present in
// either destination tab.
func Run(ctx Context, rows [][]string, existing map[string]struct{}) *Result {
	result := &Result{}

	for _, row := range rows {
		classification, matched := ctx.ClassifyRow(row, existing)
		if !matched {
			continue
		}
		result.Scanned++

		switch classification.Decision {
		case DecisionReject:
			result.Rejected++
			for _, reason := range classification.Reasons {
				result.Exceptions = append(result.Exceptions, Exception{Key: classification.Key, Reason: reason})
			}
			continue
		case DecisionDuplicate:
			result.Duplicates++
		case DecisionRouteArchive:
			result.RoutedArchive = append(result.RoutedArchive, row)
		case DecisionRouteRelocation:
			result.RoutedRelocations = append(result.RoutedRelocations, row)
		}

		// Routed or duplicate: the source copy is done either way.
		result.QueueKeys = append(result.QueueKeys, classification.Key)
	}

	summary := Exception{
		Key: "summary",
		Reason: fmt.Sprintf("matched=%d archive=%d relocations=%d duplicates=%d rejected=%d queued=%d",
			result.Scanned, len(result.RoutedArchive), len(result.RoutedRelocations),
			result.Duplicates, result.Rejected, len(result.QueueKeys)),
	}
	result.Exceptions = append([]Exception{summary}, result.Exceptions...)
	return result
}
