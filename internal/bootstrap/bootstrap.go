package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/support-rag-bot/internal/config"
	"github.com/kirillkom/support-rag-bot/internal/core/ports"
	"github.com/kirillkom/support-rag-bot/internal/core/usecase"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/extractor"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/extractor/xlsx"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/llm/azopenai"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/queue/nats"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/resilience"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/search/azsearch"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/translate/azuretranslator"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	Bots      ports.BotReader
	ChatUC    ports.ChatService
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	botRepo := postgres.NewBotRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	searchIndex := azsearch.New(cfg.SearchEndpoint, cfg.SearchAPIKey, cfg.SearchIndex, azsearch.Options{
		HTTPTimeout:        cfg.SearchTimeout,
		ResilienceExecutor: executor,
	})
	translator := azuretranslator.New(cfg.TranslatorEndpoint, cfg.TranslatorAPIKey, cfg.TranslatorRegion, azuretranslator.Options{
		HTTPTimeout:        cfg.TranslatorTimeout,
		ResilienceExecutor: executor,
	})
	completion := azopenai.New(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIDeployment, azopenai.Options{
		HTTPTimeout:        cfg.GenerateTimeout,
		ResilienceExecutor: executor,
	})

	textExtractor := extractor.NewComposite(plaintext.NewExtractor(storage))
	textExtractor.Register("pdf", pdf.NewExtractor(storage))
	textExtractor.Register("xlsx", xlsx.NewExtractor(storage))

	generator := usecase.NewResponseGenerator(completion, cfg.GenMaxTokens, cfg.GenTemperature, cfg.GenerateTimeout)
	chatUC := usecase.NewChatUseCase(
		usecase.NewTranslationGateway(translator, cfg.TranslatorTimeout),
		usecase.NewBotScopeResolver(botRepo),
		usecase.NewDocumentRetriever(searchIndex, cfg.SearchTimeout),
		generator,
		usecase.NewFallbackResponder(generator),
		usecase.ChatOptions{PivotLanguage: cfg.PivotLanguage, MaxResults: cfg.SearchTopK},
	)
	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, textExtractor, searchIndex)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,
		Bots:   botRepo,

		ChatUC:    chatUC,
		IngestUC:  ingestUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
