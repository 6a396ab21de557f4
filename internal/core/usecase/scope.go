package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
	"github.com/kirillkom/support-rag-bot/internal/core/ports"
)

// BotScopeResolver maps an optional bot id to the set of document ids its
// retrieval is restricted to. An unknown bot widens to the unscoped search
// rather than failing the request.
type BotScopeResolver struct {
	registry ports.BotRegistry
}

func NewBotScopeResolver(registry ports.BotRegistry) *BotScopeResolver {
	return &BotScopeResolver{registry: registry}
}

func (r *BotScopeResolver) Resolve(ctx context.Context, botID string) domain.DocumentScope {
	botID = strings.TrimSpace(botID)
	if botID == "" {
		return domain.DocumentScope{}
	}

	ids, err := r.registry.GetDocumentIDs(ctx, botID)
	if err != nil {
		if domain.IsKind(err, domain.ErrBotNotFound) {
			slog.Warn("bot_scope_not_found", "bot_id", botID)
		} else {
			slog.Warn("bot_scope_lookup_failed", "bot_id", botID, "error", err)
		}
		return domain.DocumentScope{BotID: botID}
	}

	return domain.DocumentScope{BotID: botID, DocumentIDs: ids}
}
