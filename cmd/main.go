package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"clause-rag/internal/analyzer"
	"clause-rag/internal/chromemdb"
	"clause-rag/internal/chunker"
	"clause-rag/internal/config"
	"clause-rag/internal/corpus"
	"clause-rag/internal/db"
	"clause-rag/internal/embedding"
	"clause-rag/internal/helper"
	"clause-rag/internal/models"
	"clause-rag/internal/retriever"
	"clause-rag/internal/vectorindex"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()
	_ = godotenv.Load()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	seed := flag.Bool("seed", false, "Write the built-in standard contracts to the corpus directory")
	index := flag.Bool("index", false, "Rebuild the clause index from the corpus")
	fromPG := flag.Bool("from-pg", false, "Load the corpus from Postgres instead of the corpus directory")
	pushPG := flag.Bool("push-pg", false, "Upload the corpus directory to Postgres")
	query := flag.String("query", "", "Clause text to compare against the benchmark corpus")
	clauseType := flag.String("clause-type", "", "Optional clause type filter, e.g. termination")
	topK := flag.Int("k", 0, "Number of similar clauses to retrieve")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()
	switch {
	case *seed:
		seedCorpus(cfg)
	case *pushPG:
		pushCorpus(ctx, cfg)
	case *index:
		buildIndex(ctx, cfg, *fromPG)
	case *query != "":
		runQuery(ctx, cfg, *query, *clauseType, *topK)
	default:
		fmt.Println("Usage: clause-rag [-config path] -seed | -push-pg | -index [-from-pg] | -query \"clause text\" [-clause-type type] [-k n]")
		os.Exit(1)
	}
}

func seedCorpus(cfg *config.Config) {
	if err := corpus.SeedDir(cfg.Corpus.Dir); err != nil {
		log.Fatal().Err(err).Msg("Error seeding corpus")
	}
	log.Info().Str("dir", cfg.Corpus.Dir).Msg("Standard contract corpus written")
}

func pushCorpus(ctx context.Context, cfg *config.Config) {
	corp, err := corpus.LoadDir(cfg.Corpus.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading corpus")
	}

	sqldb := db.Connect(cfg.Corpus.Database.DSN, os.Getenv(cfg.Corpus.Database.PasswordEnv))
	bunDB := db.NewDB(sqldb, cfg.Corpus.Database.Debug)
	defer bunDB.Close()

	if err := db.Drop(ctx, bunDB); err != nil {
		log.Fatal().Err(err).Msg("Error dropping clause table")
	}
	if err := db.Init(ctx, bunDB); err != nil {
		log.Fatal().Err(err).Msg("Error initializing clause table")
	}
	if err := db.StoreRecords(ctx, bunDB, corp.Records()); err != nil {
		log.Fatal().Err(err).Msg("Error storing clause records")
	}
	log.Info().Int("records", corp.Len()).Msg("Corpus uploaded to Postgres")
}

func buildIndex(ctx context.Context, cfg *config.Config, fromPG bool) {
	corp := loadCorpus(ctx, cfg, fromPG)
	builder := newBuilder(cfg)
	emb := newEmbedder(cfg)

	switch cfg.Index.Backend {
	case "memory", "":
		idx := vectorindex.New()
		if err := idx.RebuildFrom(ctx, corp.Records(), builder, emb); err != nil {
			log.Fatal().Err(err).Msg("Error rebuilding index")
		}
		if err := idx.Save(cfg.Index.Path); err != nil {
			log.Fatal().Err(err).Msg("Error saving index")
		}
		log.Info().Int("entries", idx.Count()).Str("path", cfg.Index.Path).Msg("Index rebuilt and saved")
	case "chromem":
		store, err := chromemdb.NewStore(cfg.Index.Path, cfg.Index.Collection, false)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening chromem store")
		}
		if err := store.RebuildFrom(ctx, corp.Records(), builder, emb); err != nil {
			log.Fatal().Err(err).Msg("Error rebuilding chromem collection")
		}
		log.Info().Int("entries", store.Count()).Str("path", cfg.Index.Path).Msg("Chromem collection rebuilt")
	default:
		log.Fatal().Str("backend", cfg.Index.Backend).Msg("Unknown index backend")
	}
}

func runQuery(ctx context.Context, cfg *config.Config, query, clauseType string, topK int) {
	corp := loadCorpus(ctx, cfg, false)
	emb := newEmbedder(cfg)

	var store retriever.VectorStore
	switch cfg.Index.Backend {
	case "memory", "":
		idx, err := vectorindex.Load(cfg.Index.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("Error loading index, run with -index first")
		}
		store = idx
	case "chromem":
		chromemStore, err := chromemdb.NewStore(cfg.Index.Path, cfg.Index.Collection, false)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening chromem store")
		}
		store = chromemStore
	default:
		log.Fatal().Str("backend", cfg.Index.Backend).Msg("Unknown index backend")
	}

	if topK <= 0 {
		topK = cfg.Retriever.TopK
	}
	r := retriever.New(emb, store, corp)
	hits, err := r.SearchSimilar(ctx, query, topK, clauseType)
	if err != nil {
		if errors.Is(err, models.ErrIndexEmpty) {
			log.Fatal().Msg("Index is empty, run with -index first")
		}
		log.Fatal().Err(err).Msg("Error searching similar clauses")
	}

	report := analyzer.Compare(hits)

	log.Info().Msg("Comparison report: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	helper.PrettyPrint(report)
	fmt.Printf("\n%s\n", report.Summary)
}

func loadCorpus(ctx context.Context, cfg *config.Config, fromPG bool) *corpus.Corpus {
	if fromPG {
		sqldb := db.Connect(cfg.Corpus.Database.DSN, os.Getenv(cfg.Corpus.Database.PasswordEnv))
		bunDB := db.NewDB(sqldb, cfg.Corpus.Database.Debug)
		defer bunDB.Close()
		records, err := db.LoadRecords(ctx, bunDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Error loading corpus from Postgres")
		}
		return corpus.New(records)
	}
	corp, err := corpus.LoadDir(cfg.Corpus.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading corpus")
	}
	return corp
}

func newBuilder(cfg *config.Config) *chunker.Builder {
	builder, err := chunker.NewBuilder(cfg.Chunker.MaxTokens, *cfg.Chunker.OverlapTokens)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid chunker configuration")
	}
	return builder
}

func newEmbedder(cfg *config.Config) embedding.Embedder {
	switch cfg.Embedder.Type {
	case "ollama", "":
		emb, err := embedding.NewOllamaEmbedder(cfg.Embedder.BaseURL, cfg.Embedder.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing ollama embedder")
		}
		return emb
	case "openai":
		emb, err := embedding.NewOpenAIEmbedder(os.Getenv(cfg.Embedder.APIKeyEnv), cfg.Embedder.BaseURL, cfg.Embedder.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing openai embedder")
		}
		return emb
	default:
		log.Fatal().Str("type", cfg.Embedder.Type).Msg("Unknown embedder type")
		return nil
	}
}
