package retrieve

import (
	"context"
	"sort"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/rag/embedding"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

// Retriever returns the grounding chunks for a query. A Degraded result
// with a nil error means retrieval itself broke or found nothing usable;
// the caller still answers, but must say it has no grounding.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (commonModels.RetrievalResult, error)
}

type retriever struct {
	embedder embedding.Embedder
	vectors  vectorDB.DataProcessor
	registry commonModels.DocumentRegistry
	logger   *logger_i.Logger
}

func NewRetriever(embedder embedding.Embedder, vectors vectorDB.DataProcessor, registry commonModels.DocumentRegistry) Retriever {
	return &retriever{
		embedder: embedder,
		vectors:  vectors,
		registry: registry,
		logger:   logger_i.NewLogger("Retriever"),
	}
}

func (r *retriever) Retrieve(ctx context.Context, query string) (commonModels.RetrievalResult, error) {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	queryVector, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		log.Error("Query embedding failed, answering without grounding", "error:", err)
		return commonModels.RetrievalResult{Degraded: true}, nil
	}

	// Over-fetch so that filtering by document status still leaves a
	// full top-k to choose from.
	limit := uint64(config.RetrieveTopK * config.CandidateMultiplier)
	candidates, err := r.vectors.Search(ctx, config.VectorCollectionName, queryVector, limit)
	if err != nil {
		log.Error("Vector search failed, answering without grounding", "error:", err)
		return commonModels.RetrievalResult{Degraded: true}, nil
	}

	candidates = r.filterByDocumentStatus(ctx, candidates)

	if config.HybridRetrieval {
		rescoreHybrid(query, candidates)
	}

	kept := make([]commonModels.RetrievedChunk, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= config.MinRelevanceScore {
			kept = append(kept, c)
		}
	}

	// deterministic order: score desc, then sequence, then document id
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		if kept[i].SequenceIndex != kept[j].SequenceIndex {
			return kept[i].SequenceIndex < kept[j].SequenceIndex
		}
		return kept[i].DocumentId < kept[j].DocumentId
	})
	if len(kept) > config.RetrieveTopK {
		kept = kept[:config.RetrieveTopK]
	}

	log.Debug("Retrieved chunks", "count", len(kept))
	return commonModels.RetrievalResult{
		Chunks:   kept,
		Degraded: len(kept) == 0,
	}, nil
}

// filterByDocumentStatus drops chunks whose document is not INDEXED.
// This is what hides half-written or deleted chunk sets from answers.
func (r *retriever) filterByDocumentStatus(ctx context.Context, candidates []commonModels.RetrievedChunk) []commonModels.RetrievedChunk {
	statusCache := make(map[string]commonModels.DocumentStatus, len(candidates))
	kept := make([]commonModels.RetrievedChunk, 0, len(candidates))
	for _, c := range candidates {
		status, seen := statusCache[c.DocumentId]
		if !seen {
			doc, found := r.registry.GetDocument(ctx, c.DocumentId)
			if !found {
				status = commonModels.DocumentDeleted
			} else {
				status = doc.Status
			}
			statusCache[c.DocumentId] = status
		}
		if status == commonModels.DocumentIndexed {
			kept = append(kept, c)
		}
	}
	return kept
}

// rescoreHybrid blends the vector score with lexical token overlap.
func rescoreHybrid(query string, candidates []commonModels.RetrievedChunk) {
	qset := toTokenSet(query)
	for i := range candidates {
		lexical := overlapOchiai(qset, candidates[i].Text)
		candidates[i].Score = config.HybridAlpha*candidates[i].Score + (1-config.HybridAlpha)*lexical
	}
}
