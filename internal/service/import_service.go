package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ticketops-web/internal/models"

	"github.com/sirupsen/logrus"
)

// ImportService runs the receipt reconciliation import: parse rows, resolve
// accounts/events/cards, detect persisted duplicates and create purchases.
// Rows are processed strictly in file order; each row's failure is isolated.
type ImportService struct {
	accounts  AccountStore
	events    EventStore
	purchases PurchaseStore
	conflicts ConflictStore
	po        PONumberAssigner
	linker    *CardLinker
	parser    *ReceiptParser
	log       *logrus.Logger
}

func NewImportService(
	accounts AccountStore,
	events EventStore,
	cards CardStore,
	purchases PurchaseStore,
	conflicts ConflictStore,
	po PONumberAssigner,
	cadToUSD float64,
	log *logrus.Logger,
) *ImportService {
	return &ImportService{
		accounts:  accounts,
		events:    events,
		purchases: purchases,
		conflicts: conflicts,
		po:        po,
		linker:    NewCardLinker(cards, accounts),
		parser:    NewReceiptParser(cadToUSD),
		log:       log,
	}
}

// importRun holds the call-scoped memoization maps. Concurrent imports of
// overlapping data are not isolated from each other at the database level;
// no transaction wraps the run.
type importRun struct {
	matcher    *EventMatcher
	accountIDs map[string]int64
	eventIDs   map[string]*int64
}

// ImportReceipts processes the raw file and returns the full result payload.
func (s *ImportService) ImportReceipts(raw string, sessionID *int64) (*models.ImportResult, error) {
	return s.ImportReceiptsWithProgress(raw, sessionID, nil)
}

// ImportReceiptsWithProgress is the streaming variant: the same row loop,
// reporting running created/failed counts after each row.
func (s *ImportService) ImportReceiptsWithProgress(raw string, sessionID *int64, progress func(models.ImportProgress)) (*models.ImportResult, error) {
	parsed, err := s.parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	if len(parsed.Rows) == 0 {
		return nil, fmt.Errorf("no valid rows parsed")
	}

	events, err := s.events.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	run := &importRun{
		matcher:    NewEventMatcher(events),
		accountIDs: make(map[string]int64),
		eventIDs:   make(map[string]*int64),
	}

	result := &models.ImportResult{
		Success:    true,
		Conflicts:  []models.CardConflict{},
		Duplicates: []models.ImportDuplicate{},
		Warnings:   parsed.Warnings,
		Errors:     parsed.Errors,
	}
	if result.Warnings == nil {
		result.Warnings = []models.ImportIssue{}
	}
	if result.Errors == nil {
		result.Errors = []models.ImportIssue{}
	}

	if progress != nil {
		progress(models.ImportProgress{Stage: "start", TotalRows: len(parsed.Rows)})
	}

	failed := 0
	for i := range parsed.Rows {
		row := &parsed.Rows[i]
		if err := s.processRow(run, row, result, sessionID); err != nil {
			result.Errors = append(result.Errors, models.ImportIssue{RowNum: row.RowNum, Message: err.Error()})
			failed++
		}
		if progress != nil {
			progress(models.ImportProgress{
				Stage:     "progress",
				TotalRows: len(parsed.Rows),
				Created:   result.Summary.PurchasesCreated,
				Failed:    failed,
			})
		}
	}

	if progress != nil {
		progress(models.ImportProgress{
			Stage:     "complete",
			TotalRows: len(parsed.Rows),
			Created:   result.Summary.PurchasesCreated,
			Failed:    failed,
		})
	}

	return result, nil
}

func (s *ImportService) processRow(run *importRun, row *ReceiptRow, result *models.ImportResult, sessionID *int64) error {
	accountID, err := s.resolveAccount(run, row, result)
	if err != nil {
		return err
	}

	eventID := s.resolveEvent(run, row, result)

	dup, err := s.checkDuplicate(row, accountID, eventID)
	if err != nil {
		return err
	}
	if dup != nil {
		result.Duplicates = append(result.Duplicates, *dup)
		result.Summary.PurchasesSkipped++
		return nil
	}

	var cardID *int64
	var conflict *models.CardConflict
	if row.CardLast4 != "" {
		linkRes, err := s.linker.Resolve(row.CardLast4, accountID)
		if err != nil {
			return err
		}
		cardID = linkRes.CardID
		if linkRes.Linked {
			result.Summary.CardsLinked++
		}
		if linkRes.Conflict != nil {
			conflict = linkRes.Conflict
			conflict.SessionID = sessionID
			conflict.RowNum = row.RowNum
			conflict.Email = row.Email
			conflict.TmOrderNumber = row.OrderNumber
			conflict.Status = "open"
			if err := s.conflicts.Create(conflict); err != nil {
				return fmt.Errorf("failed to record card conflict: %w", err)
			}
		}
	}

	purchase := &models.Purchase{
		AccountID:      accountID,
		EventID:        eventID,
		CardID:         cardID,
		TmOrderNumber:  row.OrderNumber,
		Quantity:       row.Quantity,
		TotalPrice:     row.TotalPrice,
		PricePerTicket: math.Round(row.TotalPrice/float64(row.Quantity)*100) / 100,
		Section:        row.Section,
		Row:            row.Row,
		Seats:          row.Seats,
		Status:         "pending",
	}
	if err := s.purchases.Create(purchase); err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	result.Summary.PurchasesCreated++

	if err := s.po.Assign(purchase); err != nil {
		s.log.WithError(err).Warnf("failed to assign PO number to purchase %d", purchase.ID)
	}

	if conflict != nil {
		conflict.PurchaseID = &purchase.ID
		if err := s.conflicts.AttachPurchase(conflict.ID, purchase.ID); err != nil {
			s.log.WithError(err).Warnf("failed to attach purchase %d to conflict %d", purchase.ID, conflict.ID)
		}
		result.Conflicts = append(result.Conflicts, *conflict)
	}

	return nil
}

func (s *ImportService) resolveAccount(run *importRun, row *ReceiptRow, result *models.ImportResult) (int64, error) {
	key := strings.ToLower(row.Email)
	if id, ok := run.accountIDs[key]; ok {
		return id, nil
	}

	existing, err := s.accounts.FindByEmail(row.Email)
	if err != nil {
		return 0, fmt.Errorf("account lookup failed for %s: %w", row.Email, err)
	}

	var id int64
	if existing != nil {
		id = existing.ID
	} else {
		account := &models.Account{Email: key, Status: "active"}
		if err := s.accounts.Create(account); err != nil {
			return 0, fmt.Errorf("failed to create account %s: %w", row.Email, err)
		}
		id = account.ID
		result.Summary.AccountsCreated++
	}

	run.accountIDs[key] = id
	return id, nil
}

func (s *ImportService) resolveEvent(run *importRun, row *ReceiptRow, result *models.ImportResult) *int64 {
	eventID, cached := run.eventIDs[row.EventKey]
	if !cached {
		if event := run.matcher.Match(row); event != nil {
			eventID = &event.ID
		}
		run.eventIDs[row.EventKey] = eventID
	}

	if eventID != nil {
		result.Summary.EventsMatched++
		return eventID
	}

	msg := fmt.Sprintf("no matching event for %q", row.EventName)
	if suggestions := run.matcher.Suggest(row.EventName, 3); len(suggestions) > 0 {
		msg += fmt.Sprintf(" (closest: %s)", strings.Join(suggestions, "; "))
	}
	result.Warnings = append(result.Warnings, models.ImportIssue{RowNum: row.RowNum, Message: msg})
	return nil
}

// checkDuplicate looks up an existing purchase by order number first, then by
// the (account, event, section, row, seats) tuple for receipts that predate
// order-number capture. Nothing is mutated; diffs are surfaced for manual
// reconciliation only.
func (s *ImportService) checkDuplicate(row *ReceiptRow, accountID int64, eventID *int64) (*models.ImportDuplicate, error) {
	existing, err := s.purchases.FindByOrderNumber(row.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed for order %s: %w", row.OrderNumber, err)
	}
	if existing != nil {
		changes := diffPurchase(existing, row)
		return &models.ImportDuplicate{
			RowNum:             row.RowNum,
			TmOrderNumber:      row.OrderNumber,
			ExistingPurchaseID: existing.ID,
			HasChanges:         len(changes) > 0,
			Changes:            changes,
		}, nil
	}

	existing, err = s.purchases.FindBySeatTuple(accountID, eventID, row.Section, row.Row, row.Seats)
	if err != nil {
		return nil, fmt.Errorf("seat tuple duplicate check failed: %w", err)
	}
	if existing != nil {
		return &models.ImportDuplicate{
			RowNum:             row.RowNum,
			TmOrderNumber:      row.OrderNumber,
			ExistingPurchaseID: existing.ID,
			HasChanges:         existing.TmOrderNumber == "",
		}, nil
	}

	return nil, nil
}

func diffPurchase(existing *models.Purchase, row *ReceiptRow) []models.FieldChange {
	var changes []models.FieldChange
	compare := func(field, current, incoming string) {
		if current != incoming {
			changes = append(changes, models.FieldChange{Field: field, Existing: current, Incoming: incoming})
		}
	}
	compare("quantity", strconv.Itoa(existing.Quantity), strconv.Itoa(row.Quantity))
	compare("total_price", formatPrice(existing.TotalPrice), formatPrice(row.TotalPrice))
	compare("section", existing.Section, row.Section)
	compare("row", existing.Row, row.Row)
	compare("seats", existing.Seats, row.Seats)
	return changes
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
