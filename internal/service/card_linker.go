package service

import (
	"fmt"

	"ticketops-web/internal/models"
)

// CardLinker resolves a receipt's card-last-4 against the card table and
// auto-links single unlinked candidates.
type CardLinker struct {
	cards    CardStore
	accounts AccountStore
}

func NewCardLinker(cards CardStore, accounts AccountStore) *CardLinker {
	return &CardLinker{cards: cards, accounts: accounts}
}

// CardLinkResult reports the resolved card id (nil on conflict or not
// found), whether an unlinked card was auto-linked, and the conflict to
// queue, if any.
type CardLinkResult struct {
	CardID   *int64
	Linked   bool
	Conflict *models.CardConflict
}

// Resolve applies the disambiguation table. Check ordering is significant
// for operators: own-account candidates first, then unlinked, then mismatch.
func (l *CardLinker) Resolve(last4 string, accountID int64) (*CardLinkResult, error) {
	candidates, err := l.cards.FindByLast4(last4)
	if err != nil {
		return nil, fmt.Errorf("card lookup failed for *%s: %w", last4, err)
	}

	switch len(candidates) {
	case 0:
		return &CardLinkResult{Conflict: &models.CardConflict{
			CardLast4:    last4,
			ConflictType: models.ConflictCardNotFound,
		}}, nil

	case 1:
		card := candidates[0]
		if card.AccountID == nil {
			if err := l.cards.LinkAccount(card.ID, accountID); err != nil {
				return nil, fmt.Errorf("failed to link card %d: %w", card.ID, err)
			}
			return &CardLinkResult{CardID: &card.ID, Linked: true}, nil
		}
		if *card.AccountID == accountID {
			return &CardLinkResult{CardID: &card.ID}, nil
		}
		return l.mismatch(last4, card)
	}

	var own, unlinked []models.Card
	for _, card := range candidates {
		switch {
		case card.AccountID != nil && *card.AccountID == accountID:
			own = append(own, card)
		case card.AccountID == nil:
			unlinked = append(unlinked, card)
		}
	}

	if len(own) == 1 {
		return &CardLinkResult{CardID: &own[0].ID}, nil
	}
	if len(own) > 1 {
		return l.ambiguous(last4)
	}
	if len(unlinked) == 1 {
		if err := l.cards.LinkAccount(unlinked[0].ID, accountID); err != nil {
			return nil, fmt.Errorf("failed to link card %d: %w", unlinked[0].ID, err)
		}
		return &CardLinkResult{CardID: &unlinked[0].ID, Linked: true}, nil
	}
	if len(unlinked) > 1 {
		return l.ambiguous(last4)
	}

	// All candidates belong to other accounts.
	return l.mismatch(last4, candidates[0])
}

func (l *CardLinker) ambiguous(last4 string) (*CardLinkResult, error) {
	return &CardLinkResult{Conflict: &models.CardConflict{
		CardLast4:    last4,
		ConflictType: models.ConflictCardAmbiguous,
	}}, nil
}

func (l *CardLinker) mismatch(last4 string, card models.Card) (*CardLinkResult, error) {
	conflict := &models.CardConflict{
		CardLast4:      last4,
		ConflictType:   models.ConflictCardAccountMismatch,
		ExistingCardID: &card.ID,
	}
	if card.AccountID != nil {
		owner, err := l.accounts.FindByID(*card.AccountID)
		if err == nil && owner != nil {
			conflict.ExistingAccountEmail = owner.Email
		}
	}
	return &CardLinkResult{Conflict: conflict}, nil
}
