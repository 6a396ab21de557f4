package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
)

// BotRepository is the read side of the bot registry. Bots are provisioned
// out of band; the pipeline only resolves their document scope.
type BotRepository struct {
	db *sql.DB
}

func NewBotRepository(db *sql.DB) *BotRepository {
	return &BotRepository{db: db}
}

func (r *BotRepository) GetDocumentIDs(ctx context.Context, botID string) ([]string, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT document_ids
FROM bots
WHERE id = $1
`, botID)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBotNotFound, "get bot document ids", errors.New(botID))
		}
		return nil, fmt.Errorf("scan bot document ids: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal bot document ids: %w", err)
	}
	return ids, nil
}

func (r *BotRepository) GetByID(ctx context.Context, botID string) (*domain.Bot, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, description, document_ids, created_at
FROM bots
WHERE id = $1
`, botID)

	bot, err := scanBot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBotNotFound, "get bot", errors.New(botID))
		}
		return nil, err
	}
	return bot, nil
}

func (r *BotRepository) List(ctx context.Context) ([]domain.Bot, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, description, document_ids, created_at
FROM bots
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query bots: %w", err)
	}
	defer rows.Close()

	bots := make([]domain.Bot, 0)
	for rows.Next() {
		bot, err := scanBot(rows)
		if err != nil {
			return nil, err
		}
		bots = append(bots, *bot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bots: %w", err)
	}
	return bots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBot(row rowScanner) (*domain.Bot, error) {
	var bot domain.Bot
	var raw []byte
	if err := row.Scan(&bot.ID, &bot.Name, &bot.Description, &raw, &bot.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan bot: %w", err)
	}
	if err := json.Unmarshal(raw, &bot.DocumentIDs); err != nil {
		return nil, fmt.Errorf("unmarshal bot document ids: %w", err)
	}
	return &bot, nil
}
