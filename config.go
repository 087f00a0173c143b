package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/natanel567/newsrag/rag"
)

var (
	listenAddress    string
	openAIKey        string
	openAIBaseURL    string
	embeddingModel   string
	collectionName   string
	collectionDBPath string
	databaseURL      string
	newsTablePath    string
	newsDatasetPath  string
	newsDatasetLimit int
)

// loadConfig reads the environment into the package configuration. A .env
// file in the working directory is honored for local development.
func loadConfig() {
	_ = godotenv.Load()

	listenAddress = envOrDefault("LISTEN_ADDRESS", ":8080")
	openAIKey = os.Getenv("OPENAI_API_KEY")
	openAIBaseURL = os.Getenv("OPENAI_API_BASE_URL")
	embeddingModel = envOrDefault("EMBEDDING_MODEL", rag.DefaultEmbeddingModel)
	collectionName = envOrDefault("COLLECTION_NAME", "news_articles")
	collectionDBPath = envOrDefault("COLLECTION_DB_PATH", "chromem-db")
	databaseURL = os.Getenv("DATABASE_URL")
	newsTablePath = envOrDefault("NEWS_CSV_PATH", "data/news_rag_table.csv")
	newsDatasetPath = envOrDefault("NEWS_DATASET_PATH", "data/News_Category_Dataset_v3.json")
	newsDatasetLimit = envOrDefaultInt("NEWS_DATASET_LIMIT", 130)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// retrievalConfig builds the retrieval policy from the environment,
// falling back to the documented defaults.
func retrievalConfig() rag.Config {
	config := rag.DefaultConfig()
	if v := os.Getenv("TOP_K"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			config.TopK = parsed
		}
	}
	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			config.SimilarityThreshold = float32(parsed)
		}
	}
	return config
}
