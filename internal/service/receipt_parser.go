package service

import (
	"encoding/csv"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"ticketops-web/internal/models"
)

// Column names recognized in receipt exports (matched lowercased/trimmed).
const (
	colCredentials = "mail credentials"
	colOrderNumber = "ticketmaster order number"
	colEventName   = "event name"
	colEventDate   = "event date"
	colVenue       = "event venue and location"
	colSeatInfo    = "seat information"
	colCardUsed    = "card used"
	colTotalPrice  = "total price"
)

// ReceiptRow is one parsed logical line of a receipt export. It exists only
// for the duration of a single import run.
type ReceiptRow struct {
	RowNum      int
	Email       string
	OrderNumber string
	EventName   string
	VenueRaw    string
	Venue       string
	DateRaw     string
	DayOfWeek   string
	EventDate   *time.Time
	Section     string
	Row         string
	Seats       string
	Quantity    int
	CardType    string
	CardLast4   string
	TotalPrice  float64
	EventKey    string
}

// ParsedReceipts carries the surviving rows plus row-scoped parse issues.
type ParsedReceipts struct {
	Rows     []ReceiptRow
	Warnings []models.ImportIssue
	Errors   []models.ImportIssue
}

type ReceiptParser struct {
	cadToUSD float64
}

func NewReceiptParser(cadToUSD float64) *ReceiptParser {
	return &ReceiptParser{cadToUSD: cadToUSD}
}

var (
	orderNumberRe = regexp.MustCompile(`(?i)order\s*#?\s*:?\s*([A-Za-z0-9/_.-]+)`)
	emailRe       = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	seatInfoRe    = regexp.MustCompile(`(?i)sec\.?\s*([^,]+),\s*row\s*([^,]+),\s*seats?\s*(\d+)(?:\s*-\s*(\d+))?`)
	cardInfoRe    = regexp.MustCompile(`^(.*?)\s*[—–-]+\s*(\d{4})$`)
	trailing4Re   = regexp.MustCompile(`(\d{4})\s*$`)
	priceRe       = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

var canadianProvinceNames = []string{
	"alberta", "british columbia", "manitoba", "new brunswick",
	"newfoundland", "labrador", "nova scotia", "northwest territories",
	"nunavut", "ontario", "prince edward island", "quebec", "québec",
	"saskatchewan", "yukon",
}

var canadianProvinceCodes = map[string]bool{
	"AB": true, "BC": true, "MB": true, "NB": true, "NL": true,
	"NS": true, "NT": true, "NU": true, "ON": true, "PE": true,
	"QC": true, "SK": true, "YT": true,
}

// Parse turns raw CSV/TSV text into receipt rows. Rows missing an email or an
// order number are recorded as errors and skipped; seat/card parse failures
// only warn. Duplicate order numbers within the file are dropped with a
// warning. A file whose header lacks the required columns is a file-level
// error.
func (p *ReceiptParser) Parse(raw string) (*ParsedReceipts, error) {
	lines := mergeLogicalRows(raw)
	if len(lines) < 2 {
		return nil, fmt.Errorf("file contains no data rows")
	}

	delim := ','
	if strings.Contains(lines[0], "\t") {
		delim = '\t'
	}

	header, err := parseRecord(lines[0], delim)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header row: %w", err)
	}
	colIndex := make(map[string]int)
	for i, h := range header {
		colIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := colIndex[colCredentials]; !ok {
		return nil, fmt.Errorf("missing required column %q", colCredentials)
	}
	if _, ok := colIndex[colOrderNumber]; !ok {
		return nil, fmt.Errorf("missing required column %q", colOrderNumber)
	}

	result := &ParsedReceipts{}
	seenOrders := make(map[string]bool)

	for i, line := range lines[1:] {
		rowNum := i + 2 // header is row 1
		if strings.TrimSpace(line) == "" {
			continue
		}

		record, err := parseRecord(line, delim)
		if err != nil {
			result.Errors = append(result.Errors, models.ImportIssue{RowNum: rowNum, Message: fmt.Sprintf("unparseable row: %v", err)})
			continue
		}

		row, issues := p.parseRow(rowNum, record, colIndex)
		for _, issue := range issues {
			if issue.fatal {
				result.Errors = append(result.Errors, issue.ImportIssue)
			} else {
				result.Warnings = append(result.Warnings, issue.ImportIssue)
			}
		}
		if row == nil {
			continue
		}

		if seenOrders[row.OrderNumber] {
			result.Warnings = append(result.Warnings, models.ImportIssue{
				RowNum:  rowNum,
				Message: fmt.Sprintf("duplicate order number %s in file, row dropped", row.OrderNumber),
			})
			continue
		}
		seenOrders[row.OrderNumber] = true

		result.Rows = append(result.Rows, *row)
	}

	return result, nil
}

type rowIssue struct {
	models.ImportIssue
	fatal bool
}

func (p *ReceiptParser) parseRow(rowNum int, record []string, colIndex map[string]int) (*ReceiptRow, []rowIssue) {
	var issues []rowIssue
	cell := func(name string) string {
		idx, ok := colIndex[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	email := extractEmail(cell(colCredentials))
	if email == "" {
		return nil, append(issues, rowIssue{models.ImportIssue{RowNum: rowNum, Message: "missing email in mail credentials"}, true})
	}

	orderNumber := extractOrderNumber(cell(colOrderNumber))
	if orderNumber == "" {
		return nil, append(issues, rowIssue{models.ImportIssue{RowNum: rowNum, Message: "missing ticketmaster order number"}, true})
	}

	row := &ReceiptRow{
		RowNum:      rowNum,
		Email:       email,
		OrderNumber: orderNumber,
		EventName:   cell(colEventName),
		VenueRaw:    cell(colVenue),
		DateRaw:     cell(colEventDate),
		Quantity:    1,
	}

	row.Venue = strings.TrimSpace(strings.SplitN(row.VenueRaw, "—", 2)[0])

	section, seatRow, seats, quantity, ok := parseSeatInfo(cell(colSeatInfo))
	if ok {
		row.Section, row.Row, row.Seats, row.Quantity = section, seatRow, seats, quantity
	} else if cell(colSeatInfo) != "" {
		issues = append(issues, rowIssue{models.ImportIssue{RowNum: rowNum, Message: fmt.Sprintf("unparseable seat information %q", cell(colSeatInfo))}, false})
	} else {
		issues = append(issues, rowIssue{models.ImportIssue{RowNum: rowNum, Message: "missing seat information"}, false})
	}

	cardType, cardLast4, ok := parseCardInfo(cell(colCardUsed))
	if ok {
		row.CardType, row.CardLast4 = cardType, cardLast4
	} else {
		issues = append(issues, rowIssue{models.ImportIssue{RowNum: rowNum, Message: fmt.Sprintf("unparseable card info %q", cell(colCardUsed))}, false})
	}

	row.TotalPrice = parsePrice(cell(colTotalPrice))
	if isCanadianLocation(row.VenueRaw) {
		row.TotalPrice = math.Round(row.TotalPrice*p.cadToUSD*100) / 100
	}

	dayOfWeek, datePart, eventDate := parseEventDate(row.DateRaw)
	row.DayOfWeek = dayOfWeek
	row.EventDate = eventDate

	row.EventKey = eventCacheKey(row.EventName, datePart, row.Venue)

	return row, issues
}

// mergeLogicalRows joins physical lines into logical CSV rows by quote
// parity: a line with an odd count of double quotes is incomplete and is
// concatenated (with the newline preserved) to the following line(s).
func mergeLogicalRows(raw string) []string {
	physical := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	var logical []string
	var buf string
	open := false

	for _, line := range physical {
		if open {
			buf += "\n" + line
		} else {
			buf = line
		}
		open = strings.Count(buf, `"`)%2 == 1
		if !open {
			logical = append(logical, buf)
			buf = ""
		}
	}
	if buf != "" {
		logical = append(logical, buf)
	}
	return logical
}

func parseRecord(line string, delim rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	return r.Read()
}

func extractEmail(s string) string {
	return emailRe.FindString(s)
}

func extractOrderNumber(s string) string {
	if m := orderNumberRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	trimmed := strings.TrimSpace(s)
	if trimmed != "" && !strings.ContainsAny(trimmed, " \t") {
		return trimmed
	}
	return ""
}

// parseSeatInfo handles cells like "Sec 321, Row 12, Seat 25 - 26". Section
// and row run up to the next comma. A seat range N - M with M > N yields
// quantity M-N+1 and seats "N-M"; otherwise quantity is 1.
func parseSeatInfo(s string) (section, row, seats string, quantity int, ok bool) {
	m := seatInfoRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", "", 1, false
	}
	section = strings.TrimSpace(m[1])
	row = strings.TrimSpace(m[2])
	quantity = 1
	seats = m[3]
	if m[4] != "" {
		from, _ := strconv.Atoi(m[3])
		to, _ := strconv.Atoi(m[4])
		if to > from {
			quantity = to - from + 1
			seats = fmt.Sprintf("%d-%d", from, to)
		}
	}
	return section, row, seats, quantity, true
}

// parseCardInfo handles "<TYPE> — <last4>" with em-dash or hyphen, falling
// back to a trailing 4-digit group.
func parseCardInfo(s string) (cardType, last4 string, ok bool) {
	if m := cardInfoRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), m[2], true
	}
	if m := trailing4Re.FindStringSubmatch(s); m != nil {
		return "", m[1], true
	}
	return "", "", false
}

func parsePrice(s string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(s)
	m := priceRe.FindString(cleaned)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// isCanadianLocation reports whether the venue+location string names a
// Canadian province/territory or carries its 2-letter code.
func isCanadianLocation(location string) bool {
	lower := strings.ToLower(location)
	for _, name := range canadianProvinceNames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	tokens := strings.FieldsFunc(location, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, tok := range tokens {
		if len(tok) == 2 && canadianProvinceCodes[tok] {
			return true
		}
	}
	return false
}

// parseEventDate splits "Sun · Aug 02, 2026 · 8:00 PM" on the middle dot.
// Unparseable dates keep the raw text with a nil parsed date.
func parseEventDate(raw string) (dayOfWeek, datePart string, parsed *time.Time) {
	parts := strings.Split(raw, "·")
	if len(parts) >= 2 {
		dayOfWeek = strings.TrimSpace(parts[0])
		datePart = strings.TrimSpace(parts[1])
	} else {
		datePart = strings.TrimSpace(raw)
	}

	for _, layout := range []string{"Jan 2, 2006", "January 2, 2006", "2006-01-02", "01/02/2006"} {
		if t, err := time.Parse(layout, datePart); err == nil {
			parsed = &t
			break
		}
	}
	return dayOfWeek, datePart, parsed
}

// eventCacheKey hashes the lowercase-normalized (name, date, venue) tuple.
// Used only as a per-run memoization key, never persisted.
func eventCacheKey(name, datePart, venue string) string {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(name)))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.ToLower(datePart)))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.ToLower(venue)))
	return fmt.Sprintf("%x", h.Sum64())
}
