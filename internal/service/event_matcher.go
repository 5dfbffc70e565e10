package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"ticketops-web/internal/models"

	"github.com/agnivade/levenshtein"
)

// EventMatcher matches receipt rows against the persisted event set, loaded
// once and compared in memory. Matching is first-match-wins with no scoring;
// operators depend on the current behavior, so candidates are never ranked.
type EventMatcher struct {
	events []models.Event
}

func NewEventMatcher(events []models.Event) *EventMatcher {
	return &EventMatcher{events: events}
}

var monthDayYearRe = regexp.MustCompile(`(?i)([A-Za-z]+)\s+(\d{1,2}),?\s+(\d{4})`)

// Match returns the first event satisfying the name, venue and date
// predicates, or nil when nothing matches.
func (m *EventMatcher) Match(row *ReceiptRow) *models.Event {
	for i := range m.events {
		candidate := &m.events[i]
		if !nameMatches(row.EventName, candidate.Name) {
			continue
		}
		if !venueMatches(row.Venue, candidate.Venue) {
			continue
		}
		if !dateMatches(row.EventDate, row.DateRaw, candidate.EventDate, candidate.RawDate) {
			continue
		}
		return candidate
	}
	return nil
}

// Suggest returns up to limit candidate names closest to the receipt's event
// name by edit distance. Advisory only, attached to no-match warnings; it
// never influences Match.
func (m *EventMatcher) Suggest(name string, limit int) []string {
	type scored struct {
		name string
		dist int
	}
	lower := strings.ToLower(name)
	candidates := make([]scored, 0, len(m.events))
	for i := range m.events {
		candidates = append(candidates, scored{
			name: m.events[i].Name,
			dist: levenshtein.ComputeDistance(lower, strings.ToLower(m.events[i].Name)),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}

// nameMatches accepts containment either way, or identical first three
// whitespace tokens. The token rule handles truncated/expanded variants of
// the canonical name (trailing "Pre-show Party" style suffixes).
func nameMatches(receiptName, candidateName string) bool {
	a := strings.ToLower(strings.TrimSpace(receiptName))
	b := strings.ToLower(strings.TrimSpace(candidateName))
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	aTokens := strings.Fields(a)
	bTokens := strings.Fields(b)
	if len(aTokens) < 3 || len(bTokens) < 3 {
		return false
	}
	return aTokens[0] == bTokens[0] && aTokens[1] == bTokens[1] && aTokens[2] == bTokens[2]
}

func venueMatches(receiptVenue, candidateVenue string) bool {
	a := normalizeVenue(receiptVenue)
	b := normalizeVenue(candidateVenue)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// normalizeVenue keeps only the text before the first comma or em-dash,
// lowercased.
func normalizeVenue(venue string) string {
	v := venue
	if i := strings.IndexAny(v, ","); i >= 0 {
		v = v[:i]
	}
	if i := strings.Index(v, "—"); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// dateMatches compares year/month/day when both sides parsed, otherwise
// falls back to extracting "<Month> <Day>, <Year>" from both raw strings.
func dateMatches(receiptDate *time.Time, receiptRaw string, candidateDate *time.Time, candidateRaw string) bool {
	if receiptDate != nil && candidateDate != nil {
		ry, rm, rd := receiptDate.Date()
		cy, cm, cd := candidateDate.Date()
		return ry == cy && rm == cm && rd == cd
	}

	rMatch := monthDayYearRe.FindStringSubmatch(receiptRaw)
	cMatch := monthDayYearRe.FindStringSubmatch(candidateRaw)
	if rMatch == nil || cMatch == nil {
		return false
	}
	if !strings.EqualFold(rMatch[1], cMatch[1]) {
		return false
	}
	rDay, _ := strconv.Atoi(rMatch[2])
	cDay, _ := strconv.Atoi(cMatch[2])
	rYear, _ := strconv.Atoi(rMatch[3])
	cYear, _ := strconv.Atoi(cMatch[3])
	return rDay == cDay && rYear == cYear
}
