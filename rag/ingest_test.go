package rag_test

import (
	"os"
	"path/filepath"

	. "github.com/natanel567/newsrag/rag"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ingest", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "ingest_test_*")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		if tempDir != "" {
			os.RemoveAll(tempDir)
		}
	})

	Describe("LoadArticles", func() {
		It("should load articles from a prepared news table", func() {
			csvPath := filepath.Join(tempDir, "news_rag_table.csv")
			content := "text,category,date,link\n" +
				"\"Budget vote delayed. Lawmakers postponed the vote. [Category: POLITICS, Date: 2022-09-23]\",POLITICS,2022-09-23,https://example.com/budget\n" +
				"\"New trail opens. A scenic route for hikers. [Category: TRAVEL, Date: 2022-08-01]\",TRAVEL,2022-08-01,https://example.com/trail\n"
			Expect(os.WriteFile(csvPath, []byte(content), 0644)).To(Succeed())

			articles, err := LoadArticles(csvPath)
			Expect(err).ToNot(HaveOccurred())
			Expect(articles).To(HaveLen(2))
			Expect(articles[0].Category).To(Equal("POLITICS"))
			Expect(articles[0].Date).To(Equal("2022-09-23"))
			Expect(articles[0].Link).To(Equal("https://example.com/budget"))
			Expect(articles[1].Text).To(ContainSubstring("New trail opens"))
		})

		It("should tolerate reordered columns", func() {
			csvPath := filepath.Join(tempDir, "reordered.csv")
			content := "link,date,category,text\n" +
				"https://example.com/a,2022-01-01,SPORTS,Match report text\n"
			Expect(os.WriteFile(csvPath, []byte(content), 0644)).To(Succeed())

			articles, err := LoadArticles(csvPath)
			Expect(err).ToNot(HaveOccurred())
			Expect(articles).To(HaveLen(1))
			Expect(articles[0].Text).To(Equal("Match report text"))
			Expect(articles[0].Category).To(Equal("SPORTS"))
		})

		It("should fail when a required column is missing", func() {
			csvPath := filepath.Join(tempDir, "bad.csv")
			content := "text,category,date\nsome text,POLITICS,2022-01-01\n"
			Expect(os.WriteFile(csvPath, []byte(content), 0644)).To(Succeed())

			_, err := LoadArticles(csvPath)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("link"))
		})

		It("should fail when the file does not exist", func() {
			_, err := LoadArticles(filepath.Join(tempDir, "missing.csv"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ConvertDataset", func() {
		It("should convert the JSONL dump into the news table", func() {
			jsonlPath := filepath.Join(tempDir, "dataset.json")
			csvPath := filepath.Join(tempDir, "table.csv")
			lines := `{"headline":"Budget vote delayed","short_description":"Lawmakers postponed the vote.","category":"POLITICS","date":"2022-09-23","link":"https://example.com/budget"}
{"headline":"New trail opens","short_description":"A scenic route for hikers.","category":"TRAVEL","date":"2022-08-01","link":"https://example.com/trail"}
`
			Expect(os.WriteFile(jsonlPath, []byte(lines), 0644)).To(Succeed())

			written, err := ConvertDataset(jsonlPath, csvPath, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(written).To(Equal(2))

			articles, err := LoadArticles(csvPath)
			Expect(err).ToNot(HaveOccurred())
			Expect(articles).To(HaveLen(2))
			Expect(articles[0].Text).To(Equal(
				"Budget vote delayed. Lawmakers postponed the vote. [Category: POLITICS, Date: 2022-09-23]"))
			Expect(articles[0].Link).To(Equal("https://example.com/budget"))
		})

		It("should skip records without a short description", func() {
			jsonlPath := filepath.Join(tempDir, "dataset.json")
			csvPath := filepath.Join(tempDir, "table.csv")
			lines := `{"headline":"No description","short_description":"","category":"POLITICS","date":"2022-09-23","link":"https://example.com/a"}
{"headline":"Has description","short_description":"Something happened.","category":"POLITICS","date":"2022-09-24","link":"https://example.com/b"}
`
			Expect(os.WriteFile(jsonlPath, []byte(lines), 0644)).To(Succeed())

			written, err := ConvertDataset(jsonlPath, csvPath, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(written).To(Equal(1))
		})

		It("should honor the row limit", func() {
			jsonlPath := filepath.Join(tempDir, "dataset.json")
			csvPath := filepath.Join(tempDir, "table.csv")
			lines := `{"headline":"One","short_description":"First.","category":"A","date":"2022-01-01","link":"https://example.com/1"}
{"headline":"Two","short_description":"Second.","category":"B","date":"2022-01-02","link":"https://example.com/2"}
{"headline":"Three","short_description":"Third.","category":"C","date":"2022-01-03","link":"https://example.com/3"}
`
			Expect(os.WriteFile(jsonlPath, []byte(lines), 0644)).To(Succeed())

			written, err := ConvertDataset(jsonlPath, csvPath, 2)
			Expect(err).ToNot(HaveOccurred())
			Expect(written).To(Equal(2))
		})

		It("should fail on malformed JSON lines", func() {
			jsonlPath := filepath.Join(tempDir, "dataset.json")
			csvPath := filepath.Join(tempDir, "table.csv")
			Expect(os.WriteFile(jsonlPath, []byte("{not json}\n"), 0644)).To(Succeed())

			_, err := ConvertDataset(jsonlPath, csvPath, 0)
			Expect(err).To(HaveOccurred())
		})
	})
})
