package service

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"ticketops-web/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes for the persistence interfaces.

type fakeAccountStore struct {
	accounts []*models.Account
	nextID   int64
	creates  int
}

func (f *fakeAccountStore) FindByEmail(email string) (*models.Account, error) {
	for _, a := range f.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) FindByID(id int64) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) Create(account *models.Account) error {
	f.nextID++
	account.ID = f.nextID
	f.accounts = append(f.accounts, account)
	f.creates++
	return nil
}

type fakeCardStore struct {
	cards []models.Card
	links map[int64]int64
}

func (f *fakeCardStore) FindByLast4(last4 string) ([]models.Card, error) {
	var out []models.Card
	for _, c := range f.cards {
		if strings.HasSuffix(c.Number, last4) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCardStore) LinkAccount(cardID, accountID int64) error {
	if f.links == nil {
		f.links = make(map[int64]int64)
	}
	f.links[cardID] = accountID
	for i := range f.cards {
		if f.cards[i].ID == cardID && f.cards[i].AccountID == nil {
			id := accountID
			f.cards[i].AccountID = &id
		}
	}
	return nil
}

type fakeEventStore struct {
	events []models.Event
}

func (f *fakeEventStore) GetAll() ([]models.Event, error) {
	return f.events, nil
}

type fakePurchaseStore struct {
	existing    []*models.Purchase
	created     []*models.Purchase
	nextID      int64
	failOnOrder string
}

func (f *fakePurchaseStore) all() []*models.Purchase {
	return append(append([]*models.Purchase{}, f.existing...), f.created...)
}

func (f *fakePurchaseStore) FindByOrderNumber(orderNumber string) (*models.Purchase, error) {
	for _, p := range f.all() {
		if p.TmOrderNumber == orderNumber && orderNumber != "" {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePurchaseStore) FindBySeatTuple(accountID int64, eventID *int64, section, row, seats string) (*models.Purchase, error) {
	for _, p := range f.all() {
		if p.AccountID != accountID || p.Section != section || p.Row != row || p.Seats != seats {
			continue
		}
		if (p.EventID == nil) != (eventID == nil) {
			continue
		}
		if p.EventID != nil && *p.EventID != *eventID {
			continue
		}
		return p, nil
	}
	return nil, nil
}

func (f *fakePurchaseStore) Create(purchase *models.Purchase) error {
	if f.failOnOrder != "" && purchase.TmOrderNumber == f.failOnOrder {
		return errors.New("insert failed")
	}
	f.nextID++
	purchase.ID = f.nextID
	f.created = append(f.created, purchase)
	return nil
}

type fakeConflictStore struct {
	conflicts []*models.CardConflict
	attached  map[int64]int64
	nextID    int64
}

func (f *fakeConflictStore) Create(conflict *models.CardConflict) error {
	f.nextID++
	conflict.ID = f.nextID
	f.conflicts = append(f.conflicts, conflict)
	return nil
}

func (f *fakeConflictStore) AttachPurchase(conflictID, purchaseID int64) error {
	if f.attached == nil {
		f.attached = make(map[int64]int64)
	}
	f.attached[conflictID] = purchaseID
	return nil
}

type fakePOAssigner struct {
	fail  bool
	calls int
}

func (f *fakePOAssigner) Assign(purchase *models.Purchase) error {
	f.calls++
	if f.fail {
		return errors.New("po sequence unavailable")
	}
	purchase.PONumber = fmt.Sprintf("PO-%08d", purchase.ID)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type importFixture struct {
	accounts  *fakeAccountStore
	events    *fakeEventStore
	cards     *fakeCardStore
	purchases *fakePurchaseStore
	conflicts *fakeConflictStore
	po        *fakePOAssigner
	svc       *ImportService
}

func newImportFixture() *importFixture {
	f := &importFixture{
		accounts: &fakeAccountStore{},
		events: &fakeEventStore{events: []models.Event{
			{ID: 1, Name: "The Eras Tour", Venue: "Madison Square Garden", RawDate: "Aug 2, 2026"},
		}},
		cards:     &fakeCardStore{},
		purchases: &fakePurchaseStore{},
		conflicts: &fakeConflictStore{},
		po:        &fakePOAssigner{},
	}
	f.svc = NewImportService(f.accounts, f.events, f.cards, f.purchases, f.conflicts, f.po, 0.73, testLogger())
	return f
}

func TestImportService_CreatesPurchase(t *testing.T) {
	f := newImportFixture()
	f.cards.cards = []models.Card{{ID: 5, Number: "4111111111114242"}}

	raw := buildReceiptFile(
		`buyer@example.com / pw,1001,The Eras Tour,"Aug 2, 2026","Madison Square Garden — New York, NY","Sec 321, Row 12, Seat 25 - 26",Visa — 4242,$500.00`,
	)

	result, err := f.svc.ImportReceipts(raw, nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Summary.PurchasesCreated)
	assert.Equal(t, 1, result.Summary.AccountsCreated)
	assert.Equal(t, 1, result.Summary.EventsMatched)
	assert.Equal(t, 1, result.Summary.CardsLinked)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.Errors)

	require.Len(t, f.purchases.created, 1)
	p := f.purchases.created[0]
	assert.Equal(t, "1001", p.TmOrderNumber)
	assert.Equal(t, 2, p.Quantity)
	assert.Equal(t, 500.00, p.TotalPrice)
	assert.Equal(t, 250.00, p.PricePerTicket)
	assert.Equal(t, "pending", p.Status)
	require.NotNil(t, p.EventID)
	assert.Equal(t, int64(1), *p.EventID)
	require.NotNil(t, p.CardID)
	assert.Equal(t, int64(5), *p.CardID)
	assert.NotEmpty(t, p.PONumber)

	// The unlinked card was auto-linked to the new account.
	assert.Equal(t, p.AccountID, f.cards.links[5])
}

func TestImportService_AccountMemoized(t *testing.T) {
	f := newImportFixture()

	raw := buildReceiptFile(
		`buyer@example.com,1001,The Eras Tour,"Aug 2, 2026",Madison Square Garden,"Sec 1, Row A, Seat 1",Visa — 4242,$100`,
		`BUYER@EXAMPLE.COM,1002,The Eras Tour,"Aug 2, 2026",Madison Square Garden,"Sec 1, Row A, Seat 2",Visa — 4242,$100`,
	)

	result, err := f.svc.ImportReceipts(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.PurchasesCreated)
	assert.Equal(t, 1, result.Summary.AccountsCreated)
	assert.Equal(t, 1, f.accounts.creates)
	require.Len(t, f.purchases.created, 2)
	assert.Equal(t, f.purchases.created[0].AccountID, f.purchases.created[1].AccountID)
}

func TestImportService_DuplicateByOrderNumber(t *testing.T) {
	f := newImportFixture()
	f.purchases.existing = []*models.Purchase{{
		ID:            77,
		AccountID:     1,
		TmOrderNumber: "1001",
		Quantity:      2,
		TotalPrice:    500.00,
		Section:       "321",
		Row:           "12",
		Seats:         "25-26",
	}}

	raw := buildReceiptFile(
		`buyer@example.com,1001,The Eras Tour,"Aug 2, 2026",Madison Square Garden,"Sec 321, Row 12, Seat 25 - 26",Visa — 4242,$500.00`,
	)

	result, err := f.svc.ImportReceipts(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Summary.PurchasesCreated)
	assert.Equal(t, 1, result.Summary.PurchasesSkipped)
	require.Len(t, result.Duplicates, 1)
	dup := result.Duplicates[0]
	assert.Equal(t, int64(77), dup.ExistingPurchaseID)
	assert.False(t, dup.HasChanges)
	assert.Empty(t, dup.Changes)
}

func TestImportService_DuplicateWithChanges(t *testing.T) {
	f := newImportFixture()
	f.purchases.existing = []*models.Purchase{{
		ID:            77,
		AccountID:     1,
		TmOrderNumber: "1001",
		Quantity:      4,
		TotalPrice:    400.00,
		Section:       "321",
		Row:           "12",
		Seats:         "25-28",
	}}

	raw := buildReceiptFile(
		`buyer@example.com,1001,The Eras Tour,"Aug 2, 2026",Madison Square Garden,"Sec 321, Row 12, Seat 25 - 26",Visa — 4242,$500.00`,
	)

	result, err := f.svc.ImportReceipts(raw, nil)
	require.NoError(t, err)

	require.Len(t, result.Duplicates, 1)
	dup := result.Duplicates[0]
	assert.True(t, dup.HasChanges)

	fields := make(map[string]models.FieldChange)
	for _, ch := range dup.Changes {
		fields[ch.Field] = ch
	}
	assert.Contains(t, fields, "quantity")
	assert.Contains(t, fields, "total_price")
	assert.Contains(t, fields, "seats")
	assert.NotContains(t, fields, "section")
	assert.Equal(t, "400.00", fields["total_price"].Existing)
	assert.Equal(t, "500.00", fields["total_price"].Incoming)
}

func TestImportService_DuplicateBySeatTuple(t *testing.T) {
	f := newImportFixture()
	f.accounts.accounts = []*models.Account{{ID: 9, Email: "buyer@example.com"}}
	f.accounts.nextID = 9
	eventID := int64(1)
	f.purchases.existing = []*models.Purchase{{
		ID:        88,
		AccountID: 9,
		EventID:   &eventID,
		// Imported before order numbers were captured.
		TmOrderNumber: "",
		Section:       "321",
		Row:           "12",
		Seats:         "25-26",
	}}

	raw := buildReceiptFile(
		`buyer@example.com,1001,The Eras Tour,"Aug 2, 2026",Madison Square Garden,"Sec 321, Row 12, Seat 25 - 26",Visa — 4242,$500.00`,
	)

	result, err := f.svc.ImportReceipts(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.PurchasesSkipped)
	require.Len(t, result.Duplicates, 1)
	dup := result.Duplicates[0]
	assert.Equal(t, int64(88), dup.ExistingPurchaseID)
	assert.Equal(t, "1001", dup.TmOrderNumber)
	// The seat tuple matched a purchase without an order number, so the
	// incoming row carries information the stored one lacks.
	assert.True(t, dup.HasChanges)
}

func TestImportService_ConflictPersistedAndAttached(t *testing.T) {
	f := newImportFixture()
	otherAccount := int64(42)
	f.accounts.accounts = []*models.Account{{ID: 42, Email: "other@example.com"}}
	f.accounts.nextID = 42
	f.cards.cards = []models.Card{{ID: 5, Number: "4111111111114242", AccountID: &otherAccount}}
	sessionID := int64(7)

	raw := buildReceiptFile(
		`buyer@example.com,1001,The Eras Tour,"Aug 2, 2026",Madison Square Garden,"Sec 1, Row A, Seat 1",Visa — 4242,$100`,
	)

	result, err := f.svc.ImportReceipts(raw, &sessionID)
	require.NoError(t, err)

	// The purchase is still created, without a card.
	assert.Equal(t, 1, result.Summary.PurchasesCreated)
	require.Len(t, f.purchases.created, 1)
	assert.Nil(t, f.purchases.created[0].CardID)

	require.Len(t, result.Conflicts, 1)
	conflict := result.Conflicts[0]
	assert.Equal(t, models.ConflictCardAccountMismatch, conflict.ConflictType)
	assert.Equal(t, "other@example.com", conflict.ExistingAccountEmail)
	assert.Equal(t, "buyer@example.com", conflict.Email)
	assert.Equal(t, "1001", conflict.TmOrderNumber)
	assert.Equal(t, "open", conflict.Status)
	require.NotNil(t, conflict.SessionID)
	assert.Equal(t, sessionID, *conflict.SessionID)

	// Persisted and pointed at the created purchase.
	require.Len(t, f.conflicts.conflicts, 1)
	assert.Equal(t, f.purchases.created[0].ID, f.conflicts.attached[conflict.ID])
}

func TestImportService_NoMatchingEventWarns(t *testing.T) {
	f := newImportFixture()

	raw := buildReceiptFile(
		`buyer@example.com,1001,Some Unknown Concert,"Aug 2, 2026",Nowhere Hall,"Sec 1, Row A, Seat 1",Visa — 4242,$100`,
	)

	result, err := f.svc.ImportReceipts(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.PurchasesCreated)
	assert.Equal(t, 0, result.Summary.EventsMatched)
	require.Len(t, f.purchases.created, 1)
	assert.Nil(t, f.purchases.created[0].EventID)

	var found bool
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, `no matching event for "Some Unknown Concert"`) {
			found = true
			assert.Contains(t, w.Message, "closest:")
		}
	}
	assert.True(t, found)
}

func TestImportService_RowFailureIsolated(t *testing.T) {
	f := newImportFixture()
	f.purchases.failOnOrder = "1001"

	raw := buildReceiptFile(
		`buyer@example.com,1001,The Eras Tour,"Aug 2, 2026",Madison Square Garden,"Sec 1, Row A, Seat 1",Visa — 4242,$100`,
		`buyer@example.com,1002,The Eras Tour,"Aug 2, 2026",Madison Square Garden,"Sec 1, Row A, Seat 2",Visa — 4242,$100`,
	)

	result, err := f.svc.ImportReceipts(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.PurchasesCreated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].RowNum)
	assert.Contains(t, result.Errors[0].Message, "failed to create purchase")
	require.Len(t, f.purchases.created, 1)
	assert.Equal(t, "1002", f.purchases.created[0].TmOrderNumber)
}

func TestImportService_POFailureSwallowed(t *testing.T) {
	f := newImportFixture()
	f.po.fail = true

	raw := buildReceiptFile(
		`buyer@example.com,1001,The Eras Tour,"Aug 2, 2026",Madison Square Garden,"Sec 1, Row A, Seat 1",Visa — 4242,$100`,
	)

	result, err := f.svc.ImportReceipts(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.PurchasesCreated)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, f.po.calls)
	assert.Empty(t, f.purchases.created[0].PONumber)
}

func TestImportService_NoValidRows(t *testing.T) {
	f := newImportFixture()

	raw := buildReceiptFile(
		`no email,1001,Show,"Aug 2, 2026",Hall,"Sec 1, Row A, Seat 1",Visa — 4242,$100`,
	)

	_, err := f.svc.ImportReceipts(raw, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid rows parsed")
}

func TestImportService_Progress(t *testing.T) {
	f := newImportFixture()

	raw := buildReceiptFile(
		`a@b.com,1001,The Eras Tour,"Aug 2, 2026",Madison Square Garden,"Sec 1, Row A, Seat 1",Visa — 4242,$100`,
		`c@d.com,1002,The Eras Tour,"Aug 2, 2026",Madison Square Garden,"Sec 1, Row A, Seat 2",Visa — 4242,$100`,
	)

	var stages []models.ImportProgress
	_, err := f.svc.ImportReceiptsWithProgress(raw, nil, func(p models.ImportProgress) {
		stages = append(stages, p)
	})
	require.NoError(t, err)

	// start, one per row, complete
	require.Len(t, stages, 4)
	assert.Equal(t, "start", stages[0].Stage)
	assert.Equal(t, 2, stages[0].TotalRows)
	assert.Equal(t, "progress", stages[1].Stage)
	assert.Equal(t, 1, stages[1].Created)
	assert.Equal(t, "complete", stages[3].Stage)
	assert.Equal(t, 2, stages[3].Created)
	assert.Equal(t, 0, stages[3].Failed)
}
