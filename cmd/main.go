package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cognitive-rag/internal/assist"
	"cognitive-rag/internal/chunker"
	"cognitive-rag/internal/config"
	"cognitive-rag/internal/embedding"
	"cognitive-rag/internal/ingest"
	"cognitive-rag/internal/labeler"
	"cognitive-rag/internal/labelstore"
	"cognitive-rag/internal/llmservice"
	"cognitive-rag/internal/models"
	"cognitive-rag/internal/prompt"
	"cognitive-rag/internal/retriever"
	"cognitive-rag/internal/vectorstore"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to a document to ingest")
	query := flag.String("query", "", "Editor content to get guidance for")
	mode := flag.String("mode", "START", "Task mode: START, CONTINUE, REFRAME, STUCK_DIAGNOSIS, OUTLINE")
	owner := flag.String("owner", "", "Owner identifier scoping all documents and queries")
	deleteDoc := flag.String("delete", "", "Document ID to delete")
	extra := flag.String("context", "", "Optional additional context for the query")
	flag.Parse()

	if *owner == "" {
		log.Fatal().Msg("Please provide an owner with the -owner flag")
	}

	ctx := context.Background()
	switch {
	case *filePath != "":
		ingestFile(ctx, *owner, *filePath)
	case *deleteDoc != "":
		deleteDocument(ctx, *owner, *deleteDoc)
	default:
		// An empty -query is still a valid request: guidance for a blank editor.
		runAssist(ctx, *owner, *mode, *query, *extra)
	}
}

type app struct {
	cfg      *config.Config
	pipeline *ingest.Pipeline
	assist   *assist.Service
}

func newApp(withLabels bool) *app {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	tok, err := chunker.NewTiktoken()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading tokenizer")
	}

	chk, err := chunker.New(tok, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating chunker")
	}

	rawEmbedder, err := embedding.FromConfig(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	timeout := time.Duration(cfg.RAG.RequestTimeout) * time.Second
	embedder := embedding.NewBounded(rawEmbedder, timeout)

	index, err := vectorstore.NewChromemIndex(cfg.VectorDB, cfg.RAG.UpsertBatch)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening vector index")
	}

	var labels ingest.LabelStore
	if withLabels && cfg.Database.URL != "" {
		sqldb, err := labelstore.ConnectDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to label database")
		}
		db := labelstore.NewDB(sqldb, cfg.Database.Debug)
		if err := labelstore.InitDB(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("Error initializing label database")
		}
		labels = labelstore.NewStore(db)
	}

	completer, err := llmservice.NewClient(&cfg.InferenceLLM, timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing completion client")
	}

	ret := retriever.New(embedder, index, cfg.RAG.TopK)
	return &app{
		cfg:      cfg,
		pipeline: ingest.NewPipeline(chk, labeler.New(tok), embedder, index, labels),
		assist:   assist.NewService(ret, prompt.NewBuilder(), completer, cfg.RAG.MaxPerSource, cfg.RAG.MaxSources),
	}
}

func ingestFile(ctx context.Context, owner, filePath string) {
	a := newApp(true)

	result, err := a.pipeline.IngestFile(ctx, owner, filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting document")
	}

	log.Info().
		Str("document_id", result.DocumentID).
		Str("content_type", string(result.ContentType)).
		Int("chunks", result.ChunkCount).
		Int("upserted", result.ChunksUpserted).
		Int("labels_persisted", result.LabelsPersisted).
		Msg("Document ingested")
}

func deleteDocument(ctx context.Context, owner, documentID string) {
	a := newApp(true)

	removed, err := a.pipeline.DeleteDocument(ctx, owner, documentID)
	if err != nil {
		log.Fatal().Err(err).Msg("Error deleting document")
	}
	log.Info().Str("document_id", documentID).Int("removed", removed).Msg("Document deleted")
}

func runAssist(ctx context.Context, owner, mode, editorContent, additionalContext string) {
	a := newApp(false)

	response, err := a.assist.Assist(ctx, assist.Request{
		Mode:              models.TaskMode(mode),
		Owner:             owner,
		EditorContent:     editorContent,
		AdditionalContext: additionalContext,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error getting assistance")
	}

	if response.UsedFallback {
		log.Warn().Str("reason", response.Reason).Msg("Returned fallback guidance")
	}

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for _, src := range response.Sources {
		fmt.Printf("%s (%s, score %.2f)\n", src.Source, src.RhetoricalRole, src.SimilarityScore)
	}
	fmt.Println()

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Guidance)
}
