package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/nytx/docstore"
)

// BuildOptions select which stories from the archives enter the document
// cache. Documents must carry a summary of SummaryType (if set) and match
// the descriptor filter; Exclude inverts the match, keeping only documents
// that fail it.
type BuildOptions struct {
	SummaryType       string
	Descriptors       []string
	DescriptorClasses []string
	Exclude           bool
}

// match applies the summary and descriptor inclusion test.
func (o BuildOptions) match(doc *Document) bool {
	hasSummary := o.SummaryType == "" || doc.HasSummary(o.SummaryType)
	hasDescriptors := len(o.Descriptors) == 0 || doc.HasDescriptor(o.Descriptors, o.DescriptorClasses)
	return (hasSummary && hasDescriptors) != o.Exclude
}

// Build populates the document cache from the corpus archives under root.
// It is invoked only when the cache is absent or empty; callers check
// store.CountDocs first. Returns the number of documents cached.
func Build(ctx context.Context, store *docstore.Store, root string, opts BuildOptions, logger *slog.Logger) (int, error) {
	cached := 0
	stats, err := Walk(ctx, root, logger, func(doc *Document) error {
		if !opts.match(doc) {
			return nil
		}
		payload, err := doc.Marshal()
		if err != nil {
			return err
		}
		if err := store.PutDoc(ctx, doc.ID, doc.Path, payload); err != nil {
			return err
		}
		cached++
		if cached%10000 == 0 {
			logger.Info("caching corpus", "cached", cached)
		}
		return nil
	})
	if err != nil {
		return cached, fmt.Errorf("corpus: build cache: %w", err)
	}

	logger.Info("corpus cached",
		"cached", cached,
		"read", stats.Read,
		"malformed", stats.Malformed,
		"empty", stats.Empty)
	return cached, nil
}
