package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vetstudy-backend/internal/models"
)

type FlashcardRepo struct {
	pool *pgxpool.Pool
}

func NewFlashcardRepo(pool *pgxpool.Pool) *FlashcardRepo {
	return &FlashcardRepo{pool: pool}
}

// SaveDeck inserts a deck and all of its cards in one transaction. Either
// everything is stored or nothing is.
func (r *FlashcardRepo) SaveDeck(ctx context.Context, d *models.FlashcardDeck, cards []models.FlashcardCard) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin deck transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	d.ID = uuid.New()
	d.CardCount = len(cards)
	err = tx.QueryRow(ctx,
		`INSERT INTO flashcard_decks (id, user_id, title, topic, language, card_count)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		d.ID, d.UserID, d.Title, d.Topic, d.Language, d.CardCount,
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert deck: %w", err)
	}

	batch := &pgx.Batch{}
	nextReview := time.Now().AddDate(0, 0, 1)
	for i := range cards {
		cards[i].ID = uuid.New()
		cards[i].DeckID = d.ID
		cards[i].Position = i + 1
		cards[i].IntervalDays = 1
		cards[i].EaseFactor = 2.5
		cards[i].NextReviewAt = nextReview
		batch.Queue(
			`INSERT INTO flashcard_cards (id, deck_id, position, front, back, category, interval_days, ease_factor, repetitions, next_review_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9)`,
			cards[i].ID, d.ID, cards[i].Position, cards[i].Front, cards[i].Back, cards[i].Category,
			cards[i].IntervalDays, cards[i].EaseFactor, cards[i].NextReviewAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert cards: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit deck: %w", err)
	}
	return nil
}

func (r *FlashcardRepo) GetDeckByID(ctx context.Context, id uuid.UUID) (*models.FlashcardDeck, error) {
	d := &models.FlashcardDeck{}
	query := `SELECT id, user_id, title, topic, language, card_count, created_at
		FROM flashcard_decks WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.UserID, &d.Title, &d.Topic, &d.Language, &d.CardCount, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *FlashcardRepo) ListDecksByUser(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardDeck, error) {
	query := `SELECT id, user_id, title, topic, language, card_count, created_at
		FROM flashcard_decks WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decks := []*models.FlashcardDeck{}
	for rows.Next() {
		d := &models.FlashcardDeck{}
		err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.Topic, &d.Language, &d.CardCount, &d.CreatedAt)
		if err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (r *FlashcardRepo) DeleteDeck(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM flashcard_decks WHERE id = $1", id)
	return err
}

func (r *FlashcardRepo) GetCardsByDeck(ctx context.Context, deckID uuid.UUID) ([]models.FlashcardCard, error) {
	query := `SELECT id, deck_id, position, front, back, category,
		interval_days, ease_factor, repetitions, next_review_at, last_reviewed_at
		FROM flashcard_cards WHERE deck_id = $1 ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []models.FlashcardCard{}
	for rows.Next() {
		c := models.FlashcardCard{}
		err := rows.Scan(
			&c.ID, &c.DeckID, &c.Position, &c.Front, &c.Back, &c.Category,
			&c.IntervalDays, &c.EaseFactor, &c.Repetitions, &c.NextReviewAt, &c.LastReviewedAt,
		)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// CardOwner returns the user that owns the deck holding the card.
func (r *FlashcardRepo) CardOwner(ctx context.Context, cardID uuid.UUID) (uuid.UUID, error) {
	var owner uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT d.user_id FROM flashcard_cards c JOIN flashcard_decks d ON d.id = c.deck_id WHERE c.id = $1`,
		cardID,
	).Scan(&owner)
	return owner, err
}

// Schedule is the SM-2 state of a card after a review.
type Schedule struct {
	IntervalDays int
	EaseFactor   float64
	Repetitions  int
}

// NextSchedule applies one SM-2 review. Ratings below 2 (Again, Hard) reset
// the repetition count.
func NextSchedule(cur Schedule, rating int) Schedule {
	next := cur
	if rating < 2 {
		next.Repetitions = 0
		next.IntervalDays = 1
	} else {
		next.Repetitions++
		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(cur.IntervalDays) * cur.EaseFactor))
		}
	}

	// EF' = EF + (0.1 - (3 - rating) * (0.08 + (3 - rating) * 0.02))
	next.EaseFactor = cur.EaseFactor + (0.1 - float64(3-rating)*(0.08+float64(3-rating)*0.02))
	if next.EaseFactor < 1.3 {
		next.EaseFactor = 1.3
	}
	return next
}

func (r *FlashcardRepo) RateCard(ctx context.Context, cardID uuid.UUID, rating int) (*models.FlashcardCard, error) {
	var cur Schedule
	err := r.pool.QueryRow(ctx,
		"SELECT interval_days, ease_factor, repetitions FROM flashcard_cards WHERE id = $1",
		cardID,
	).Scan(&cur.IntervalDays, &cur.EaseFactor, &cur.Repetitions)
	if err != nil {
		return nil, err
	}

	next := NextSchedule(cur, rating)
	c := &models.FlashcardCard{}
	err = r.pool.QueryRow(ctx,
		`UPDATE flashcard_cards SET interval_days = $1, ease_factor = $2, repetitions = $3,
		 next_review_at = $4, last_reviewed_at = NOW() WHERE id = $5
		 RETURNING id, deck_id, position, front, back, category, interval_days, ease_factor, repetitions, next_review_at, last_reviewed_at`,
		next.IntervalDays, next.EaseFactor, next.Repetitions, time.Now().AddDate(0, 0, next.IntervalDays), cardID,
	).Scan(
		&c.ID, &c.DeckID, &c.Position, &c.Front, &c.Back, &c.Category,
		&c.IntervalDays, &c.EaseFactor, &c.Repetitions, &c.NextReviewAt, &c.LastReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *FlashcardRepo) GetDeckStats(ctx context.Context, deckID uuid.UUID) (*models.DeckStats, error) {
	stats := &models.DeckStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE repetitions >= 3 AND ease_factor >= 2.5),
			COUNT(*) FILTER (WHERE repetitions > 0 AND (repetitions < 3 OR ease_factor < 2.5)),
			COUNT(*) FILTER (WHERE repetitions = 0),
			COUNT(*) FILTER (WHERE next_review_at <= CURRENT_DATE)
		 FROM flashcard_cards WHERE deck_id = $1`,
		deckID,
	).Scan(&stats.TotalCards, &stats.Mastered, &stats.Learning, &stats.New, &stats.DueToday)
	if err != nil {
		return nil, err
	}

	if stats.TotalCards > 0 {
		stats.MasteryRate = float64(stats.Mastered) / float64(stats.TotalCards) * 100
	}
	return stats, nil
}
