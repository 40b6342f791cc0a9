package booking

import (
	"fmt"

	"github.com/taiwan-rail-tools/thsrbook/internal/codec"
	"github.com/taiwan-rail-tools/thsrbook/internal/schema"
)

// IDWarning flags a national ID shared by more than one passenger slot.
// RuleViolation marks combinations the railway refuses outright; the rest
// are merely suspicious and only need confirmation.
type IDWarning struct {
	NationalID    string
	Count         int
	RuleViolation bool
	Message       string
}

// CheckDuplicateIDs groups the filled passenger slots by national ID and
// returns one warning per shared ID, in first-occurrence order. Two elder
// tickets on one ID, or an elder and a disabled ticket on one ID, are rule
// violations; any other sharing is a generic warning.
func CheckDuplicateIDs(entries []schema.PassengerIDEntry) []IDWarning {
	type group struct {
		count    int
		elder    int
		disabled int
	}
	groups := make(map[string]*group)
	var order []string
	for _, entry := range entries {
		if entry.NationalID == "" {
			continue
		}
		g, ok := groups[entry.NationalID]
		if !ok {
			g = &group{}
			groups[entry.NationalID] = g
			order = append(order, entry.NationalID)
		}
		g.count++
		switch entry.TicketLabel {
		case codec.Elder.String():
			g.elder++
		case codec.Disabled.String():
			g.disabled++
		}
	}

	var warnings []IDWarning
	for _, id := range order {
		g := groups[id]
		if g.count < 2 {
			continue
		}
		w := IDWarning{NationalID: id, Count: g.count}
		switch {
		case g.elder >= 2:
			w.RuleViolation = true
			w.Message = fmt.Sprintf("身分證 %s 重複用於多張敬老票，訂票將被拒絕", id)
		case g.elder >= 1 && g.disabled >= 1:
			w.RuleViolation = true
			w.Message = fmt.Sprintf("身分證 %s 同時用於敬老票與愛心票，訂票將被拒絕", id)
		default:
			w.Message = fmt.Sprintf("身分證 %s 由 %d 位乘客重複使用", id, g.count)
		}
		warnings = append(warnings, w)
	}
	return warnings
}
