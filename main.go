package main

import (
	"context"
	"os"

	"github.com/mudler/xlog"
	"github.com/natanel567/newsrag/rag"
	"github.com/natanel567/newsrag/rag/engine"
	"github.com/natanel567/newsrag/rag/interfaces"
	"github.com/sashabaranov/go-openai"
)

func main() {
	loadConfig()

	config := openai.DefaultConfig(openAIKey)
	if openAIBaseURL != "" {
		config.BaseURL = openAIBaseURL
	}
	openAIClient := openai.NewClientWithConfig(config)
	embedder := engine.NewOpenAIEmbedder(openAIClient, embeddingModel)

	mode := "serve"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	switch mode {
	case "serve":
		index := newIndex(embedder)
		retriever := rag.NewRetriever(embedder, index, retrievalConfig())
		startAPI(listenAddress, retriever, index)
	case "build":
		articles, err := rag.LoadArticles(newsTablePath)
		if err != nil {
			xlog.Error("Failed to load news table", "error", err)
			os.Exit(1)
		}
		index := newIndex(embedder)
		if err := index.Rebuild(context.Background(), articles); err != nil {
			xlog.Error("Failed to rebuild index", "error", err)
			os.Exit(1)
		}
		xlog.Info("Rebuilt news index", "collection", collectionName, "articles", len(articles))
	case "convert":
		written, err := rag.ConvertDataset(newsDatasetPath, newsTablePath, newsDatasetLimit)
		if err != nil {
			xlog.Error("Failed to convert dataset", "error", err)
			os.Exit(1)
		}
		xlog.Info("Converted dataset to news table", "path", newsTablePath, "articles", written)
	default:
		xlog.Error("Unknown mode, expected serve, build or convert", "mode", mode)
		os.Exit(1)
	}
}

// newIndex selects the vector index backend: PostgreSQL with pgvector when
// DATABASE_URL is set, the embedded chromem store otherwise.
func newIndex(embedder interfaces.Embedder) interfaces.Index {
	if databaseURL != "" {
		index, err := engine.NewPostgresIndex(context.Background(), databaseURL, collectionName, embedder)
		if err != nil {
			xlog.Error("Failed to create PostgreSQL index", "error", err)
			os.Exit(1)
		}
		return index
	}

	index, err := engine.NewChromemIndex(collectionName, collectionDBPath, embedder)
	if err != nil {
		xlog.Error("Failed to create chromem index", "error", err)
		os.Exit(1)
	}
	return index
}
