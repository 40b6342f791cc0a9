package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taiwan-rail-tools/thsrbook/internal/page"
	"github.com/taiwan-rail-tools/thsrbook/internal/schema"
	"github.com/taiwan-rail-tools/thsrbook/internal/trains"
	"github.com/taiwan-rail-tools/thsrbook/internal/transport"
)

// Interact is the terminal surface the flow prompts through.
// *console.Console satisfies it.
type Interact interface {
	Printf(format string, args ...any)
	ReadLine(prompt string) (string, error)
	Confirm(prompt string) (bool, error)
	SelectIndex(prompt string, def int) (int, error)
}

// Orchestrator sequences the three submission stages for one booking run.
type Orchestrator struct {
	gw     Gateway
	cycle  *CaptchaCycle
	ui     Interact
	logger *zap.Logger
}

// NewOrchestrator wires a run.
func NewOrchestrator(gw Gateway, cycle *CaptchaCycle, ui Interact, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{gw: gw, cycle: cycle, ui: ui, logger: logger}
}

// Run takes a validated request through search, train selection and passenger
// details, returning the parsed confirmation. Server feedback on any stage
// stops the run: a sold-out search becomes a SoldOutError, everything else a
// ServerError. Nothing here retries except the captcha cycle inside stage one.
func (o *Orchestrator) Run(ctx context.Context, req *schema.BookingRequest) (*Result, error) {
	o.logger.Info("submitting search",
		zap.Stringer("start", req.Start),
		zap.Stringer("dest", req.Dest),
		zap.String("date", req.OutboundDate),
		zap.String("time", string(req.OutboundTime)))

	searchResp, _, err := o.cycle.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	if feedback := page.ParseErrorFeedback(searchResp.Doc); !feedback.Empty() {
		if feedback.IsNoTrainError() {
			return nil, &SoldOutError{Feedback: feedback}
		}
		return nil, &ServerError{Stage: 1, Feedback: feedback}
	}

	selectResp, train, err := o.selectTrain(ctx, searchResp, req.Auto)
	if err != nil {
		return nil, err
	}
	if feedback := page.ParseErrorFeedback(selectResp.Doc); !feedback.Empty() {
		return nil, &ServerError{Stage: 2, Feedback: feedback}
	}

	detailResp, err := o.submitDetails(ctx, selectResp, req)
	if err != nil {
		return nil, err
	}
	if feedback := page.ParseErrorFeedback(detailResp.Doc); !feedback.Empty() {
		return nil, &ServerError{Stage: 3, Feedback: feedback}
	}

	result := ParseResult(detailResp.Doc)
	o.logger.Info("booking completed",
		zap.String("pnr", result.PNR),
		zap.Int("train", train.ID),
		zap.String("total_price", result.TotalPrice))
	return &result, nil
}

// selectTrain parses the offered departures, picks one (shortest duration in
// auto mode, prompted index otherwise) and submits the choice.
func (o *Orchestrator) selectTrain(ctx context.Context, searchResp *transport.Page, auto bool) (*transport.Page, schema.Train, error) {
	catalog, err := trains.Parse(searchResp.Doc)
	if err != nil {
		return nil, schema.Train{}, err
	}

	o.ui.Printf("\n可用班次：\n")
	for i, t := range catalog.Trains() {
		o.ui.Printf("%s\n", trains.Describe(i+1, t))
	}

	var train schema.Train
	if auto {
		train, _ = catalog.SelectByShortestDuration()
		o.ui.Printf("\n自動選擇乘車時間最短的班次：%d (%s)\n", train.ID, train.Duration)
	} else {
		for {
			index, err := o.ui.SelectIndex("選擇車次", 1)
			if err != nil {
				return nil, schema.Train{}, err
			}
			train, err = catalog.SelectByIndex(index)
			if err == nil {
				break
			}
			var rangeErr *trains.IndexRangeError
			if !errors.As(err, &rangeErr) {
				return nil, schema.Train{}, err
			}
			o.ui.Printf("%s\n", rangeErr)
		}
	}

	form := schema.TrainSelectionForm{SelectedTrain: train.FormValue}
	values, err := form.Encode()
	if err != nil {
		return nil, schema.Train{}, fmt.Errorf("encode train selection: %w", err)
	}
	resp, err := o.gw.SubmitTrainSelection(ctx, searchResp, values)
	if err != nil {
		return nil, schema.Train{}, err
	}
	return resp, train, nil
}

// submitDetails fills the passenger page: contact fields, the membership
// radio the server pre-checked, and one national ID per discount-fare slot.
func (o *Orchestrator) submitDetails(ctx context.Context, selectResp *transport.Page, req *schema.BookingRequest) (*transport.Page, error) {
	ex := page.NewExtractor(selectResp.Doc)
	memberRadio, err := ex.MemberRadioValue()
	if err != nil {
		return nil, err
	}

	personalID := strings.TrimSpace(req.PersonalID)
	if personalID == "" {
		personalID, err = o.ui.ReadLine("輸入身分證字號：")
		if err != nil {
			return nil, err
		}
	}
	if len(personalID) != 10 {
		return nil, &PassengerIDError{Ordinal: 0, Value: personalID}
	}

	slots := ex.PassengerIDFieldSlots()
	if err := o.fillPassengerIDs(slots, req, personalID); err != nil {
		return nil, err
	}
	if warnings := CheckDuplicateIDs(slots); len(warnings) > 0 {
		for _, w := range warnings {
			o.ui.Printf("%s\n", w.Message)
		}
		ok, err := o.ui.Confirm("偵測到重複使用的身分證字號，仍要繼續訂票嗎？")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAborted
		}
	}

	form := schema.NewTicketDetailsForm(personalID, req.Phone, req.Email, memberRadio)
	values, err := form.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode ticket details: %w", err)
	}
	for _, slot := range slots {
		values.Set(slot.FieldName, slot.NationalID)
	}
	return o.gw.SubmitTicketDetails(ctx, selectResp, values)
}

// fillPassengerIDs resolves each slot's national ID: a profile-predefined ID
// for that position wins, then a prompt in interactive mode (blank accepts
// the booker's own ID), then the booker's ID outright in auto mode.
func (o *Orchestrator) fillPassengerIDs(slots []schema.PassengerIDEntry, req *schema.BookingRequest, personalID string) error {
	if len(slots) > 0 {
		o.ui.Printf("偵測到 %d 位乘客需要填寫身分證\n", len(slots))
	}
	for i := range slots {
		id := ""
		if i < len(req.PassengerIDs) {
			id = strings.TrimSpace(req.PassengerIDs[i])
		}
		if id == "" {
			if req.Auto {
				id = personalID
			} else {
				label := slots[i].TicketLabel
				if label == "" {
					label = "優惠票"
				}
				line, err := o.ui.ReadLine(fmt.Sprintf(
					"輸入第 %d 位乘客（%s）身分證字號（預設同訂票人）：", slots[i].Ordinal, label))
				if err != nil {
					return err
				}
				if line == "" {
					line = personalID
				}
				id = line
			}
		}
		if len(id) != 10 {
			return &PassengerIDError{Ordinal: slots[i].Ordinal, Value: id}
		}
		slots[i].NationalID = id
	}
	return nil
}
