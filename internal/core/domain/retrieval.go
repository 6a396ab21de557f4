package domain

// DocumentScope restricts retrieval to a bot's associated documents.
// An empty DocumentIDs set means "search all documents".
type DocumentScope struct {
	BotID       string
	DocumentIDs []string
}

func (s DocumentScope) IsUnscoped() bool {
	return len(s.DocumentIDs) == 0
}

// IndexHit is one raw document match as returned by the search index service,
// before highlight selection.
type IndexHit struct {
	DocumentID       string
	FileName         string
	PageCount        int
	Content          string
	ParagraphContent string
	Score            float64
	// Highlights maps an index field name to its native highlighted fragments.
	Highlights map[string][]string
}

// SearchHit is one scored match with its chosen highlight snippets.
// Never mutated after creation.
type SearchHit struct {
	DocumentID string   `json:"document_id"`
	FileName   string   `json:"file_name"`
	PageCount  int      `json:"page_count"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights"`
}

// RetrievalResult carries retrieval failure as a value rather than an error,
// so the pipeline can branch on it deterministically.
// Invariant: Succeeded == false implies Hits is empty.
type RetrievalResult struct {
	Hits        []SearchHit
	Succeeded   bool
	ErrorDetail string
}

func (r RetrievalResult) Empty() bool {
	return len(r.Hits) == 0
}

// IndexEntry is one document pushed into the search index during ingestion.
type IndexEntry struct {
	DocumentID       string
	FileName         string
	FileType         string
	PageCount        int
	Content          string
	ParagraphContent string
}
