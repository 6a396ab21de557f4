package usecase

import (
	"strings"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
)

// assembleContext concatenates every highlight from every hit, in hit order
// then highlight order, and produces one citation per hit. Duplicate passages
// across hits are kept: over-filtering risks losing relevant text.
func assembleContext(hits []domain.SearchHit) (string, []domain.SourceCitation) {
	if len(hits) == 0 {
		return "", nil
	}

	lines := make([]string, 0, len(hits))
	sources := make([]domain.SourceCitation, 0, len(hits))
	for _, hit := range hits {
		lines = append(lines, hit.Highlights...)
		sources = append(sources, domain.SourceCitation{
			FileName:  hit.FileName,
			PageCount: hit.PageCount,
			Score:     hit.Score,
		})
	}
	return strings.Join(lines, "\n"), sources
}
