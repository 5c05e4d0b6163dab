package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/renderinc/qna-board/internal/qna"
)

// Index is an in-memory Bleve index over one page of listed posts. The
// server does the actual filtering; this index only finds where the keyword
// matches so the list can highlight it.
type Index struct {
	index bleve.Index
}

// IndexedPost is a post as stored in the index
type IndexedPost struct {
	ID    string
	Title string
}

// NewIndex creates an empty in-memory index
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("Title", titleFieldMapping)

	idField := bleve.NewKeywordFieldMapping()
	idField.Index = false
	docMapping.AddFieldMappingsAt("ID", idField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// Close closes the index
func (i *Index) Close() error {
	return i.index.Close()
}

// IndexPosts adds the titles of posts in one batch
func (i *Index) IndexPosts(posts []qna.PostSummary) error {
	batch := i.index.NewBatch()
	for _, p := range posts {
		doc := &IndexedPost{ID: strconv.FormatInt(p.QnaID, 10), Title: p.Title}
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Range is a byte range [Start, End) of a title that matched the keyword
type Range struct {
	Start int
	End   int
}

// MatchTitles returns, per matching post id, the sorted non-overlapping byte
// ranges of the title where the keyword hit. A keyword word also matches the
// start of a longer title word, and only that prefix is returned.
func (i *Index) MatchTitles(keyword string, limit int) (map[int64][]Range, error) {
	match := bleve.NewMatchQuery(keyword)
	match.SetField("Title")
	query := bleve.NewDisjunctionQuery(match)

	words := strings.Fields(strings.ToLower(keyword))
	for _, w := range words {
		prefix := bleve.NewPrefixQuery(w)
		prefix.SetField("Title")
		query.AddQuery(prefix)
	}

	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.IncludeLocations = true

	results, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make(map[int64][]Range, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		var ranges []Range
		for term, locations := range hit.Locations["Title"] {
			n := matchedPrefix(term, words)
			for _, loc := range locations {
				r := Range{Start: int(loc.Start), End: int(loc.End)}
				if n > 0 && r.Start+n < r.End {
					r.End = r.Start + n
				}
				ranges = append(ranges, r)
			}
		}
		if len(ranges) > 0 {
			out[id] = mergeRanges(ranges)
		}
	}
	return out, nil
}

// matchedPrefix is the byte length of the longest word that term starts
// with, or zero
func matchedPrefix(term string, words []string) int {
	n := 0
	for _, w := range words {
		if len(w) > n && strings.HasPrefix(term, w) {
			n = len(w)
		}
	}
	return n
}

func mergeRanges(ranges []Range) []Range {
	sort.Slice(ranges, func(a, b int) bool { return ranges[a].Start < ranges[b].Start })
	merged := ranges[:1]
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Highlighter builds a throwaway index per call. The zero value is ready.
type Highlighter struct{}

// MatchTitles indexes the titles of posts and returns the keyword ranges of
// those that match
func (Highlighter) MatchTitles(keyword string, posts []qna.PostSummary) (map[int64][]Range, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || len(posts) == 0 {
		return nil, nil
	}

	idx, err := NewIndex()
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	if err := idx.IndexPosts(posts); err != nil {
		return nil, err
	}
	return idx.MatchTitles(keyword, len(posts))
}
