package service

import (
	"testing"

	"ticketops-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestCardLinker_Resolve(t *testing.T) {
	const accountID = int64(10)

	tests := []struct {
		name         string
		cards        []models.Card
		wantCardID   *int64
		wantLinked   bool
		wantConflict string // empty means no conflict
	}{
		{
			name:         "no candidates",
			cards:        nil,
			wantConflict: models.ConflictCardNotFound,
		},
		{
			name:       "single unlinked auto-links",
			cards:      []models.Card{{ID: 1, Number: "4111111111114242"}},
			wantCardID: int64Ptr(1),
			wantLinked: true,
		},
		{
			name:       "single own account",
			cards:      []models.Card{{ID: 1, Number: "4111111111114242", AccountID: int64Ptr(10)}},
			wantCardID: int64Ptr(1),
		},
		{
			name:         "single other account mismatch",
			cards:        []models.Card{{ID: 1, Number: "4111111111114242", AccountID: int64Ptr(99)}},
			wantConflict: models.ConflictCardAccountMismatch,
		},
		{
			name: "own account wins over unlinked",
			cards: []models.Card{
				{ID: 1, Number: "4111111111114242"},
				{ID: 2, Number: "5555444433334242", AccountID: int64Ptr(10)},
			},
			wantCardID: int64Ptr(2),
		},
		{
			name: "two own accounts ambiguous",
			cards: []models.Card{
				{ID: 1, Number: "4111111111114242", AccountID: int64Ptr(10)},
				{ID: 2, Number: "5555444433334242", AccountID: int64Ptr(10)},
			},
			wantConflict: models.ConflictCardAmbiguous,
		},
		{
			name: "single unlinked among others links",
			cards: []models.Card{
				{ID: 1, Number: "4111111111114242", AccountID: int64Ptr(99)},
				{ID: 2, Number: "5555444433334242"},
			},
			wantCardID: int64Ptr(2),
			wantLinked: true,
		},
		{
			name: "two unlinked ambiguous",
			cards: []models.Card{
				{ID: 1, Number: "4111111111114242"},
				{ID: 2, Number: "5555444433334242"},
			},
			wantConflict: models.ConflictCardAmbiguous,
		},
		{
			name: "all other accounts mismatch",
			cards: []models.Card{
				{ID: 1, Number: "4111111111114242", AccountID: int64Ptr(99)},
				{ID: 2, Number: "5555444433334242", AccountID: int64Ptr(98)},
			},
			wantConflict: models.ConflictCardAccountMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := &fakeCardStore{cards: tt.cards}
			accounts := &fakeAccountStore{accounts: []*models.Account{
				{ID: 99, Email: "owner@example.com"},
			}}
			linker := NewCardLinker(cards, accounts)

			got, err := linker.Resolve("4242", accountID)
			require.NoError(t, err)

			if tt.wantConflict != "" {
				require.NotNil(t, got.Conflict)
				assert.Equal(t, tt.wantConflict, got.Conflict.ConflictType)
				assert.Equal(t, "4242", got.Conflict.CardLast4)
				assert.Nil(t, got.CardID)
				return
			}

			require.Nil(t, got.Conflict)
			require.NotNil(t, got.CardID)
			assert.Equal(t, *tt.wantCardID, *got.CardID)
			assert.Equal(t, tt.wantLinked, got.Linked)
			if tt.wantLinked {
				assert.Equal(t, accountID, cards.links[*tt.wantCardID])
			}
		})
	}
}

func TestCardLinker_MismatchReportsOwner(t *testing.T) {
	cards := &fakeCardStore{cards: []models.Card{
		{ID: 1, Number: "4111111111114242", AccountID: int64Ptr(99)},
	}}
	accounts := &fakeAccountStore{accounts: []*models.Account{
		{ID: 99, Email: "owner@example.com"},
	}}
	linker := NewCardLinker(cards, accounts)

	got, err := linker.Resolve("4242", 10)
	require.NoError(t, err)
	require.NotNil(t, got.Conflict)
	assert.Equal(t, "owner@example.com", got.Conflict.ExistingAccountEmail)
	require.NotNil(t, got.Conflict.ExistingCardID)
	assert.Equal(t, int64(1), *got.Conflict.ExistingCardID)
}
