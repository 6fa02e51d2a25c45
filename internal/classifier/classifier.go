package classifier

import (
	"fmt"
	"strings"
	"time"

	"rowsweep/internal/config"
	"rowsweep/internal/keys"
	"rowsweep/internal/sheet"
)

// Decision is the routing outcome for one source row.
type Decision int

const (
	// DecisionReject flags a rule violation; the row stays in the source.
	DecisionReject Decision = iota
	// DecisionRouteArchive routes the row to the general archive tab.
	DecisionRouteArchive
	// DecisionRouteRelocation routes the row to the relocations tab.
	DecisionRouteRelocation
	// DecisionDuplicate marks a row whose key already lives in a destination;
	// it is not re-routed but is still queued for source deletion.
	DecisionDuplicate
)

// Classification is the per-row result of one sync run. Ephemeral, never
// persisted.
type Classification struct {
	Key      string
	Decision Decision
	Reasons  []string
}

// Context carries the precomputed values rule evaluation needs: resolved
// column indices, the strict payment/month header pairs, and the first
// instant of the next calendar month.
type Context struct {
	KeyCol    int
	StatusCol int
	TypeCol   int
	ReviewCol int

	MonthPairs []sheet.MonthPair
	NextMonth  time.Time

	targetStatus   string
	relocationType string
}

// NewContext resolves the configured headers against the source tab's header
// row. A missing required header is a configuration error.
func NewContext(header *sheet.Header, cfg *config.Config, now time.Time) (Context, error) {
	ctx := Context{
		// Review dates parse as UTC; keep the boundary in UTC too.
		NextMonth:      NextMonthStart(now.UTC()),
		targetStatus:   keys.Normalize(cfg.Rules.TargetStatus),
		relocationType: keys.FoldType(cfg.Rules.RelocationType),
	}

	var err error
	if ctx.KeyCol, err = header.Require(cfg.Sheet.KeyHeader); err != nil {
		return Context{}, err
	}
	if ctx.StatusCol, err = header.Require(cfg.Sheet.StatusHeader); err != nil {
		return Context{}, err
	}
	if ctx.TypeCol, err = header.Require(cfg.Sheet.TypeHeader); err != nil {
		return Context{}, err
	}
	if ctx.ReviewCol, err = header.Require(cfg.Sheet.ReviewHeader); err != nil {
		return Context{}, err
	}
	ctx.MonthPairs = header.MonthPairs(cfg.Sheet.PaymentHeaderPrefix)
	return ctx, nil
}

// NextMonthStart returns the first instant of the calendar month after now.
func NextMonthStart(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
}

// ClassifyRow evaluates one source row. The second return is false when the
// row's status does not match the target status; such rows are skipped
// entirely and produce no classification.
func (c Context) ClassifyRow(row []string, existing map[string]struct{}) (Classification, bool) {
	if keys.Normalize(sheet.Cell(row, c.StatusCol)) != c.targetStatus {
		return Classification{}, false
	}

	key := keys.Normalize(sheet.Cell(row, c.KeyCol))
	result := Classification{Key: key}

	if key == "" {
		result.Decision = DecisionReject
		result.Reasons = append(result.Reasons, "key cell is blank")
		return result, true
	}

	if reasons := c.paymentViolations(row); len(reasons) > 0 {
		result.Decision = DecisionReject
		result.Reasons = append(result.Reasons, reasons...)
		return result, true
	}

	if reason, rejected := c.reviewRejects(sheet.Cell(row, c.ReviewCol)); rejected {
		result.Decision = DecisionReject
		result.Reasons = append(result.Reasons, reason)
		return result, true
	}

	if _, ok := existing[key]; ok {
		result.Decision = DecisionDuplicate
		return result, true
	}

	if keys.FoldType(sheet.Cell(row, c.TypeCol)) == c.relocationType {
		result.Decision = DecisionRouteRelocation
	} else {
		result.Decision = DecisionRouteArchive
	}
	return result, true
}

// paymentViolations checks every strict adjacency pair: a blank payment-set
// cell beside a non-blank month-year cell blocks the transfer.
func (c Context) paymentViolations(row []string) []string {
	var reasons []string
	for _, pair := range c.MonthPairs {
		payment := strings.TrimSpace(sheet.Cell(row, pair.PaymentCol))
		month := strings.TrimSpace(sheet.Cell(row, pair.MonthCol))
		if payment == "" && month != "" {
			reasons = append(reasons, fmt.Sprintf("payment set blank for %s", pair.MonthLabel))
		}
	}
	return reasons
}

const reviewHoldLiteral = "NED"

var reviewDateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// reviewRejects evaluates the review field. The NED literal or a parsed date
// on/after the first of next month rejects. A value that is neither is "no
// opinion" and passes.
func (c Context) reviewRejects(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	if keys.Normalize(trimmed) == reviewHoldLiteral {
		return "review hold (" + reviewHoldLiteral + ")", true
	}
	for _, layout := range reviewDateLayouts {
		reviewDate, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		if !reviewDate.Before(c.NextMonth) {
			return fmt.Sprintf("review date %s is not before %s",
				reviewDate.Format("2006-01-02"), c.NextMonth.Format("2006-01-02")), true
		}
		return "", false
	}
	// Unparseable review values carry no opinion.
	return "", false
}
