package stock

import (
	"context"

	"github.com/kbelhadj/gestock/models"
)

// Verdict classifies one requested line against available stock.
type Verdict string

const (
	// VerdictOK — available covers the request.
	VerdictOK Verdict = "ok"
	// VerdictInsufficient — some stock exists but less than requested.
	// Advisory: the operator must confirm before the commit proceeds, and
	// the requested (not clamped) quantity is what gets deducted.
	VerdictInsufficient Verdict = "insufficient"
	// VerdictUnavailable — no stock at all, or the item is unknown. Blocking.
	VerdictUnavailable Verdict = "unavailable"
)

// LineCheck is the reservation verdict for one requested line.
type LineCheck struct {
	ItemID    int     `json:"item_id"`
	Name      string  `json:"name"`
	Requested int     `json:"requested"`
	Available int     `json:"available"`
	Verdict   Verdict `json:"verdict"`
}

// Report is the outcome of a reservation check. It carries no side effects
// and must be recomputed against fresh stock immediately before a commit,
// since stock can move between check and commit.
type Report struct {
	Lines []LineCheck `json:"lines"`
}

// Blocking reports whether any line has zero available stock, which must
// refuse the commit outright.
func (r Report) Blocking() bool {
	for _, l := range r.Lines {
		if l.Verdict == VerdictUnavailable {
			return true
		}
	}
	return false
}

// NeedsConfirm reports whether the commit may proceed only after the operator
// explicitly re-confirms (some lines over-requested, none unavailable).
func (r Report) NeedsConfirm() bool {
	if r.Blocking() {
		return false
	}
	for _, l := range r.Lines {
		if l.Verdict == VerdictInsufficient {
			return true
		}
	}
	return false
}

// Problems returns the lines that are not plainly OK, for display.
func (r Report) Problems() []LineCheck {
	var out []LineCheck
	for _, l := range r.Lines {
		if l.Verdict != VerdictOK {
			out = append(out, l)
		}
	}
	return out
}

// CheckLines classifies each requested line against the items map. Items
// absent from the map count as unavailable.
func CheckLines(lines []models.CreditLineInput, items map[int]models.Item) Report {
	report := Report{Lines: make([]LineCheck, 0, len(lines))}
	for _, l := range lines {
		lc := LineCheck{ItemID: l.ItemID, Requested: l.Quantity}
		it, ok := items[l.ItemID]
		if ok {
			lc.Name = it.Name
			lc.Available = it.Quantity
		}
		switch {
		case !ok || it.Quantity <= 0:
			lc.Verdict = VerdictUnavailable
		case it.Quantity < l.Quantity:
			lc.Verdict = VerdictInsufficient
		default:
			lc.Verdict = VerdictOK
		}
		report.Lines = append(report.Lines, lc)
	}
	return report
}

// Check resolves the requested lines against a live snapshot from the
// registry and classifies them. Purely advisory: no mutation.
func Check(ctx context.Context, reg Registry, lines []models.CreditLineInput) (Report, map[int]models.Item, error) {
	items := make(map[int]models.Item, len(lines))
	for _, l := range lines {
		if _, seen := items[l.ItemID]; seen {
			continue
		}
		it, err := reg.GetByID(ctx, l.ItemID)
		if err != nil {
			return Report{}, nil, err
		}
		if it != nil {
			items[l.ItemID] = *it
		}
	}
	return CheckLines(lines, items), items, nil
}
