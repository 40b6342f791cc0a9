package booking

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Result is the reservation summary parsed from the final confirmation page.
// Parsing is best-effort: the booking already succeeded by the time this
// page renders, so missing fields stay empty instead of failing the run.
type Result struct {
	PNR             string
	TotalPrice      string
	PaymentDeadline string
	TrainID         string
	Depart          string
	Arrive          string
	Date            string
}

// ParseResult reads the confirmation page.
func ParseResult(doc *html.Node) Result {
	return Result{
		PNR:             nodeText(doc, "//p[@class='pnr-code']/span"),
		TotalPrice:      nodeText(doc, "//*[@id='setTrainTotalPriceValue']"),
		PaymentDeadline: nodeText(doc, "//p[contains(@class,'payment-status')]"),
		TrainID:         nodeText(doc, "//*[@id='setTrainCode0']"),
		Depart:          nodeText(doc, "//*[@id='setTrainDeparture0']"),
		Arrive:          nodeText(doc, "//*[@id='setTrainArrival0']"),
		Date:            nodeText(doc, "//span[@class='date']/span"),
	}
}

func nodeText(doc *html.Node, expr string) string {
	node := htmlquery.FindOne(doc, expr)
	if node == nil {
		return ""
	}
	return strings.Join(strings.Fields(htmlquery.InnerText(node)), " ")
}
