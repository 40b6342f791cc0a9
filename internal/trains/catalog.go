// Package trains parses the offered-train list out of a search response and
// implements the selection policies: deterministic shortest travel time for
// unattended runs, explicit one-based index for interactive ones.
package trains

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/taiwan-rail-tools/thsrbook/internal/schema"
)

// ErrNoTrains means the response contained zero train rows. Callers must
// check the page's error feedback first: a sold-out message with zero rows is
// a user-facing advisory, not a structural failure.
var ErrNoTrains = errors.New("no available trains in response")

// unparsableDurationMinutes sorts trains with malformed duration strings
// last instead of failing the whole selection.
const unparsableDurationMinutes = 9999

// IndexRangeError reports a one-based selection outside the catalog. The
// selection fails closed rather than clamping; clamping would silently book
// a train the user did not pick.
type IndexRangeError struct {
	Index int
	Len   int
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("train selection %d out of range 1..%d", e.Index, e.Len)
}

// Catalog is the ordered train list of one response cycle.
type Catalog struct {
	trains []schema.Train
}

// Parse extracts all train-option rows from a search response.
func Parse(doc *html.Node) (*Catalog, error) {
	rows := htmlquery.Find(doc, "//label[contains(@class,'result-item')]")
	if len(rows) == 0 {
		return nil, ErrNoTrains
	}

	catalog := &Catalog{trains: make([]schema.Train, 0, len(rows))}
	for _, row := range rows {
		train := schema.Train{
			Depart:   rowText(row, ".//*[@id='QueryDeparture']"),
			Arrive:   rowText(row, ".//*[@id='QueryArrival']"),
			Duration: rowText(row, ".//*[contains(@class,'duration')]/span[last()]"),
			Discount: parseDiscount(row),
		}
		train.ID, _ = strconv.Atoi(rowText(row, ".//*[@id='QueryCode']"))
		if input := htmlquery.FindOne(row, ".//input"); input != nil {
			train.FormValue = htmlquery.SelectAttr(input, "value")
		}
		catalog.trains = append(catalog.trains, train)
	}
	return catalog, nil
}

// parseDiscount joins the early-bird and student badges into a single
// parenthesized annotation, empty when neither applies.
func parseDiscount(row *html.Node) string {
	var badges []string
	if tag := htmlquery.FindOne(row, ".//*[contains(@class,'early-bird')]/span"); tag != nil {
		badges = append(badges, strings.TrimSpace(htmlquery.InnerText(tag)))
	}
	if tag := htmlquery.FindOne(row, ".//*[contains(@class,'student')]/span"); tag != nil {
		badges = append(badges, strings.TrimSpace(htmlquery.InnerText(tag)))
	}
	if len(badges) == 0 {
		return ""
	}
	return "(" + strings.Join(badges, ", ") + ")"
}

func rowText(row *html.Node, expr string) string {
	node := htmlquery.FindOne(row, expr)
	if node == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(node))
}

// Trains returns the parsed rows in page order.
func (c *Catalog) Trains() []schema.Train { return c.trains }

// Len returns the number of offered trains.
func (c *Catalog) Len() int { return len(c.trains) }

// SelectByShortestDuration returns the train with the smallest travel time.
// Ties keep the first-encountered train so the choice is stable. The second
// return is false for an empty catalog.
func (c *Catalog) SelectByShortestDuration() (schema.Train, bool) {
	if len(c.trains) == 0 {
		return schema.Train{}, false
	}
	best := c.trains[0]
	bestMinutes := durationMinutes(best.Duration)
	for _, train := range c.trains[1:] {
		if m := durationMinutes(train.Duration); m < bestMinutes {
			best = train
			bestMinutes = m
		}
	}
	return best, true
}

// SelectByIndex returns the train at a one-based position, failing closed on
// out-of-range input.
func (c *Catalog) SelectByIndex(index int) (schema.Train, error) {
	if index < 1 || index > len(c.trains) {
		return schema.Train{}, &IndexRangeError{Index: index, Len: len(c.trains)}
	}
	return c.trains[index-1], nil
}

// Describe renders one display row in the order the site lists trains.
func Describe(index int, train schema.Train) string {
	line := fmt.Sprintf("%d. %4d %s~%s (%s)", index, train.ID, train.Depart, train.Arrive, train.Duration)
	if train.Discount != "" {
		line += " " + train.Discount
	}
	return line
}

// durationMinutes parses a colon-delimited H:MM travel time. Malformed
// strings sort last; selection never fails on them.
func durationMinutes(duration string) int {
	parts := strings.Split(duration, ":")
	if len(parts) != 2 {
		return unparsableDurationMinutes
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return unparsableDurationMinutes
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return unparsableDurationMinutes
	}
	return hours*60 + minutes
}
