package trains

import (
	"fmt"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/taiwan-rail-tools/thsrbook/internal/schema"
)

func trainRow(id int, depart, arrive, duration, token string, badges ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<label class="result-item">
	<input type="radio" name="TrainQueryDataViewPanel:TrainGroup" value="%s"/>
	<span id="QueryCode">%d</span>
	<span id="QueryDeparture">%s</span>
	<span id="QueryArrival">%s</span>
	<div class="duration"><span class="material-icons">schedule</span><span>%s</span></div>`,
		token, id, depart, arrive, duration)
	for i, badge := range badges {
		class := "early-bird"
		if i > 0 {
			class = "student"
		}
		fmt.Fprintf(&b, `<p class="%s"><span>%s</span></p>`, class, badge)
	}
	b.WriteString(`</label>`)
	return b.String()
}

func resultsPage(t *testing.T, rows ...string) *html.Node {
	t.Helper()
	markup := `<html><body><div id="TrainQueryDataViewPanel">` + strings.Join(rows, "\n") + `</div></body></html>`
	doc, err := htmlquery.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestParse_Rows(t *testing.T) {
	doc := resultsPage(t,
		trainRow(803, "06:00", "07:30", "01:30", "radio41", "早鳥85折", "大學生75折"),
		trainRow(805, "06:30", "07:15", "00:45", "radio43"),
	)
	catalog, err := Parse(doc)
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Len())

	first := catalog.Trains()[0]
	assert.Equal(t, 803, first.ID)
	assert.Equal(t, "06:00", first.Depart)
	assert.Equal(t, "07:30", first.Arrive)
	assert.Equal(t, "01:30", first.Duration)
	assert.Equal(t, "(早鳥85折, 大學生75折)", first.Discount)
	assert.Equal(t, "radio41", first.FormValue)

	second := catalog.Trains()[1]
	assert.Empty(t, second.Discount, "no badges means no annotation at all")
	assert.Equal(t, "radio43", second.FormValue)
}

func TestParse_NoRows(t *testing.T) {
	doc := resultsPage(t)
	_, err := Parse(doc)
	assert.ErrorIs(t, err, ErrNoTrains)
}

func TestSelectByShortestDuration(t *testing.T) {
	doc := resultsPage(t,
		trainRow(1, "06:00", "07:30", "01:30", "a"),
		trainRow(2, "06:30", "07:15", "00:45", "b"),
		trainRow(3, "07:00", "09:00", "02:00", "c"),
	)
	catalog, err := Parse(doc)
	require.NoError(t, err)

	best, ok := catalog.SelectByShortestDuration()
	require.True(t, ok)
	assert.Equal(t, 2, best.ID)
	assert.Equal(t, "00:45", best.Duration)
}

func TestSelectByShortestDuration_StableTieBreak(t *testing.T) {
	doc := resultsPage(t,
		trainRow(11, "06:00", "06:30", "00:30", "a"),
		trainRow(12, "07:00", "07:30", "00:30", "b"),
	)
	catalog, err := Parse(doc)
	require.NoError(t, err)

	best, ok := catalog.SelectByShortestDuration()
	require.True(t, ok)
	assert.Equal(t, 11, best.ID, "equal durations keep the first row")
}

func TestSelectByShortestDuration_MalformedSortsLast(t *testing.T) {
	doc := resultsPage(t,
		trainRow(21, "06:00", "07:30", "??", "a"),
		trainRow(22, "06:30", "08:30", "02:00", "b"),
	)
	catalog, err := Parse(doc)
	require.NoError(t, err)

	best, ok := catalog.SelectByShortestDuration()
	require.True(t, ok)
	assert.Equal(t, 22, best.ID, "unparsable duration must never win")
}

func TestSelectByShortestDuration_Empty(t *testing.T) {
	catalog := &Catalog{}
	_, ok := catalog.SelectByShortestDuration()
	assert.False(t, ok)
}

func TestSelectByIndex(t *testing.T) {
	doc := resultsPage(t,
		trainRow(1, "06:00", "07:30", "01:30", "a"),
		trainRow(2, "06:30", "07:15", "00:45", "b"),
	)
	catalog, err := Parse(doc)
	require.NoError(t, err)

	train, err := catalog.SelectByIndex(2)
	require.NoError(t, err)
	assert.Equal(t, 2, train.ID)

	var rangeErr *IndexRangeError
	_, err = catalog.SelectByIndex(0)
	require.ErrorAs(t, err, &rangeErr)
	_, err = catalog.SelectByIndex(3)
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 3, rangeErr.Index)
}

func TestDescribe(t *testing.T) {
	line := Describe(1, schema.Train{ID: 803, Depart: "06:00", Arrive: "07:30", Duration: "01:30", Discount: "(早鳥85折)"})
	assert.Equal(t, "1.  803 06:00~07:30 (01:30) (早鳥85折)", line)

	bare := Describe(2, schema.Train{ID: 805, Depart: "06:30", Arrive: "07:15", Duration: "00:45"})
	assert.Equal(t, "2.  805 06:30~07:15 (00:45)", bare)
}

func TestDurationMinutes(t *testing.T) {
	assert.Equal(t, 90, durationMinutes("01:30"))
	assert.Equal(t, 45, durationMinutes("00:45"))
	assert.Equal(t, unparsableDurationMinutes, durationMinutes(""))
	assert.Equal(t, unparsableDurationMinutes, durationMinutes("90m"))
	assert.Equal(t, unparsableDurationMinutes, durationMinutes("1:2:3"))
}
