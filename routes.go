package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/natanel567/newsrag/rag"
	"github.com/natanel567/newsrag/rag/interfaces"
	"github.com/natanel567/newsrag/rag/types"
)

//go:embed templates/*.html
var templateFiles embed.FS

// searcher is what the handlers need from the retriever.
type searcher interface {
	Retrieve(ctx context.Context, query string) ([]types.Chunk, error)
	RetrieveWithParams(ctx context.Context, query string, topK int, similarityThreshold float32) ([]types.Chunk, error)
}

type htmlRenderer struct {
	templates *template.Template
}

func (r *htmlRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

func newEcho(retriever searcher, index interfaces.Index) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Renderer = &htmlRenderer{
		templates: template.Must(template.ParseFS(templateFiles, "templates/*.html")),
	}

	registerRoutes(e, retriever, index)

	return e
}

func startAPI(listenAddress string, retriever searcher, index interfaces.Index) {
	e := newEcho(retriever, index)
	e.Logger.Fatal(e.Start(listenAddress))
}

func registerRoutes(e *echo.Echo, retriever searcher, index interfaces.Index) {
	e.GET("/", searchForm)
	e.POST("/search", search(retriever))

	e.POST("/api/search", apiSearch(retriever))
	e.GET("/api/health", health(index))
}

// rankedChunk pairs a chunk with its 1-based display rank. Ranks are a
// presentation concern, assigned here and not by the retriever.
type rankedChunk struct {
	Rank  int
	Chunk types.Chunk
}

type searchPage struct {
	Query   string
	Message string
	Results []rankedChunk
}

// searchForm renders the search page with an empty form.
func searchForm(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", searchPage{
		Message: "Enter a search query to find relevant news articles.",
	})
}

// search handles form submissions from the HTML page.
func search(retriever searcher) func(c echo.Context) error {
	return func(c echo.Context) error {
		query := strings.TrimSpace(c.FormValue("query"))
		if query == "" {
			return c.Render(http.StatusOK, "index.html", searchPage{
				Message: "Please enter a non-empty query.",
			})
		}

		singleWord := len(strings.Fields(query)) == 1

		chunks, err := retriever.Retrieve(c.Request().Context(), query)
		if err != nil {
			return c.Render(http.StatusServiceUnavailable, "index.html", searchPage{
				Query:   query,
				Message: "The search service is temporarily unavailable. Please try again shortly.",
			})
		}

		if len(chunks) == 0 {
			message := "No relevant articles found for this query."
			if singleWord {
				message = fmt.Sprintf("No relevant information found around keyword '%s'. "+
					"Try a more descriptive query (e.g. 'travel hotels', 'politics guns').", query)
			}
			return c.Render(http.StatusOK, "index.html", searchPage{
				Query:   query,
				Message: message,
			})
		}

		message := "Showing the most relevant articles for your query."
		if singleWord {
			message = fmt.Sprintf("Exploring around keyword '%s'. Results may be broader and less precise.", query)
		}

		results := make([]rankedChunk, 0, len(chunks))
		for i, chunk := range chunks {
			results = append(results, rankedChunk{Rank: i + 1, Chunk: chunk})
		}

		return c.Render(http.StatusOK, "index.html", searchPage{
			Query:   query,
			Message: message,
			Results: results,
		})
	}
}

// apiSearch exposes retrieval as a JSON endpoint. A missing top_k or
// similarity_threshold falls back to the documented defaults; an empty
// result list is a 200, a collaborator failure is a 503.
func apiSearch(retriever searcher) func(c echo.Context) error {
	return func(c echo.Context) error {
		type request struct {
			Query               string  `json:"query"`
			TopK                int     `json:"top_k"`
			SimilarityThreshold float32 `json:"similarity_threshold"`
		}

		r := new(request)
		if err := c.Bind(r); err != nil {
			return c.JSON(http.StatusBadRequest, errorMessage("Invalid request"))
		}

		var chunks []types.Chunk
		var err error
		if r.TopK == 0 && r.SimilarityThreshold == 0 {
			chunks, err = retriever.Retrieve(c.Request().Context(), r.Query)
		} else {
			if r.TopK == 0 {
				r.TopK = rag.DefaultTopK
			}
			if r.SimilarityThreshold == 0 {
				r.SimilarityThreshold = rag.DefaultSimilarityThreshold
			}
			chunks, err = retriever.RetrieveWithParams(c.Request().Context(), r.Query, r.TopK, r.SimilarityThreshold)
		}
		if err != nil {
			var embErr *rag.EmbeddingError
			var idxErr *rag.IndexError
			if errors.As(err, &embErr) || errors.As(err, &idxErr) {
				return c.JSON(http.StatusServiceUnavailable, errorMessage("Search service temporarily unavailable"))
			}
			return c.JSON(http.StatusInternalServerError, errorMessage("Failed to search articles"))
		}

		return c.JSON(http.StatusOK, chunks)
	}
}

func health(index interfaces.Index) func(c echo.Context) error {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"documents": index.Count(),
		})
	}
}

func errorMessage(message string) map[string]string {
	return map[string]string{"error": message}
}
