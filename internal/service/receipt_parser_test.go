package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const receiptHeader = "Mail Credentials,Ticketmaster Order Number,Event Name,Event Date,Event Venue and Location,Seat Information,Card Used,Total Price"

func buildReceiptFile(rows ...string) string {
	return receiptHeader + "\n" + strings.Join(rows, "\n")
}

func TestReceiptParser_Parse(t *testing.T) {
	parser := NewReceiptParser(0.73)

	raw := buildReceiptFile(
		`buyer@example.com / hunter2,Order #: 12-34567/NYC,Taylor Swift | The Eras Tour,"Sun · Aug 2, 2026 · 8:00 PM","Madison Square Garden — New York, NY","Sec 321, Row 12, Seat 25 - 26",Visa — 4242,"$1,250.00"`,
	)

	parsed, err := parser.Parse(raw)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	assert.Empty(t, parsed.Errors)

	row := parsed.Rows[0]
	assert.Equal(t, 2, row.RowNum)
	assert.Equal(t, "buyer@example.com", row.Email)
	assert.Equal(t, "12-34567/NYC", row.OrderNumber)
	assert.Equal(t, "Taylor Swift | The Eras Tour", row.EventName)
	assert.Equal(t, "Madison Square Garden", row.Venue)
	assert.Equal(t, "Sun", row.DayOfWeek)
	require.NotNil(t, row.EventDate)
	assert.Equal(t, time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC), *row.EventDate)
	assert.Equal(t, "321", row.Section)
	assert.Equal(t, "12", row.Row)
	assert.Equal(t, "25-26", row.Seats)
	assert.Equal(t, 2, row.Quantity)
	assert.Equal(t, "Visa", row.CardType)
	assert.Equal(t, "4242", row.CardLast4)
	assert.Equal(t, 1250.00, row.TotalPrice)
	assert.NotEmpty(t, row.EventKey)
}

func TestReceiptParser_QuotedNewlines(t *testing.T) {
	parser := NewReceiptParser(0.73)

	// The venue cell spans two physical lines inside quotes.
	raw := buildReceiptFile(
		`a@b.com,1001,Show,"Aug 2, 2026","Big Hall
— Somewhere, NY","Sec 1, Row A, Seat 1",Visa — 1111,$50`,
	)

	parsed, err := parser.Parse(raw)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	assert.Contains(t, parsed.Rows[0].VenueRaw, "Big Hall")
}

func TestReceiptParser_CADConversion(t *testing.T) {
	tests := []struct {
		name  string
		venue string
		want  float64
	}{
		{
			name:  "province code",
			venue: `"Scotiabank Arena — Toronto, ON"`,
			want:  73.00, // 100 * 0.73
		},
		{
			name:  "province name",
			venue: `"Centre Bell — Montreal, Quebec"`,
			want:  73.00,
		},
		{
			name:  "us venue unchanged",
			venue: `"Madison Square Garden — New York, NY"`,
			want:  100.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewReceiptParser(0.73)
			raw := buildReceiptFile(
				`a@b.com,1001,Show,"Aug 2, 2026",` + tt.venue + `,"Sec 1, Row A, Seat 1",Visa — 1111,$100.00`,
			)
			parsed, err := parser.Parse(raw)
			require.NoError(t, err)
			require.Len(t, parsed.Rows, 1)
			assert.Equal(t, tt.want, parsed.Rows[0].TotalPrice)
		})
	}
}

func TestReceiptParser_DuplicateOrderInFile(t *testing.T) {
	parser := NewReceiptParser(0.73)

	raw := buildReceiptFile(
		`a@b.com,1001,Show,"Aug 2, 2026",Hall,"Sec 1, Row A, Seat 1",Visa — 1111,$50`,
		`a@b.com,1001,Show,"Aug 2, 2026",Hall,"Sec 1, Row A, Seat 2",Visa — 1111,$50`,
	)

	parsed, err := parser.Parse(raw)
	require.NoError(t, err)
	assert.Len(t, parsed.Rows, 1)
	require.Len(t, parsed.Warnings, 1)
	assert.Contains(t, parsed.Warnings[0].Message, "duplicate order number 1001")
	assert.Equal(t, 3, parsed.Warnings[0].RowNum)
}

func TestReceiptParser_RowErrors(t *testing.T) {
	parser := NewReceiptParser(0.73)

	raw := buildReceiptFile(
		`no email here,1001,Show,"Aug 2, 2026",Hall,"Sec 1, Row A, Seat 1",Visa — 1111,$50`,
		`a@b.com,,Show,"Aug 2, 2026",Hall,"Sec 1, Row A, Seat 1",Visa — 1111,$50`,
		`b@c.com,1002,Show,"Aug 2, 2026",Hall,not seats,Visa — 1111,$50`,
	)

	parsed, err := parser.Parse(raw)
	require.NoError(t, err)

	// First two rows fail, the third survives with a seat warning.
	require.Len(t, parsed.Rows, 1)
	assert.Equal(t, "1002", parsed.Rows[0].OrderNumber)
	assert.Equal(t, 1, parsed.Rows[0].Quantity)

	require.Len(t, parsed.Errors, 2)
	assert.Contains(t, parsed.Errors[0].Message, "missing email")
	assert.Contains(t, parsed.Errors[1].Message, "missing ticketmaster order number")

	var seatWarning bool
	for _, w := range parsed.Warnings {
		if strings.Contains(w.Message, "unparseable seat information") {
			seatWarning = true
		}
	}
	assert.True(t, seatWarning)
}

func TestReceiptParser_MissingRequiredColumn(t *testing.T) {
	parser := NewReceiptParser(0.73)

	raw := "Event Name,Total Price\nShow,$50"
	_, err := parser.Parse(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestReceiptParser_TabDelimited(t *testing.T) {
	parser := NewReceiptParser(0.73)

	header := strings.ReplaceAll(receiptHeader, ",", "\t")
	raw := header + "\n" + strings.Join([]string{
		"a@b.com", "1001", "Show", "Aug 2, 2026", "Hall", "Sec 1, Row A, Seat 1", "Visa — 1111", "$50",
	}, "\t")

	parsed, err := parser.Parse(raw)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	assert.Equal(t, "1001", parsed.Rows[0].OrderNumber)
}

func TestParseSeatInfo(t *testing.T) {
	tests := []struct {
		in       string
		section  string
		row      string
		seats    string
		quantity int
		ok       bool
	}{
		{"Sec 321, Row 12, Seat 25 - 26", "321", "12", "25-26", 2, true},
		{"Sec GA Floor, Row GA, Seat 5", "GA Floor", "GA", "5", 1, true},
		{"sec. 101, row B, seats 1-4", "101", "B", "1-4", 4, true},
		{"Sec 1, Row A, Seat 9 - 9", "1", "A", "9", 1, true},
		{"general admission", "", "", "", 1, false},
	}

	for _, tt := range tests {
		section, row, seats, quantity, ok := parseSeatInfo(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if !tt.ok {
			continue
		}
		assert.Equal(t, tt.section, section, tt.in)
		assert.Equal(t, tt.row, row, tt.in)
		assert.Equal(t, tt.seats, seats, tt.in)
		assert.Equal(t, tt.quantity, quantity, tt.in)
	}
}

func TestParseCardInfo(t *testing.T) {
	tests := []struct {
		in       string
		cardType string
		last4    string
		ok       bool
	}{
		{"Visa — 4242", "Visa", "4242", true},
		{"Mastercard - 1234", "Mastercard", "1234", true},
		{"card ending in 9876", "", "9876", true},
		{"cash", "", "", false},
	}

	for _, tt := range tests {
		cardType, last4, ok := parseCardInfo(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.cardType, cardType, tt.in)
		assert.Equal(t, tt.last4, last4, tt.in)
	}
}

func TestEventCacheKey(t *testing.T) {
	// Key is case-insensitive and component-order sensitive.
	assert.Equal(t,
		eventCacheKey("Show", "Aug 2, 2026", "Hall"),
		eventCacheKey("SHOW", "AUG 2, 2026", "HALL"))
	assert.NotEqual(t,
		eventCacheKey("Show", "Aug 2, 2026", "Hall"),
		eventCacheKey("Hall", "Aug 2, 2026", "Show"))
}
