package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/notey-backend/internal/logger"
)

// Embedder is the embedding collaborator: deterministic fixed-length vectors
// for identical input. services.AIClient satisfies it.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// EmbeddingIndex encodes text into dense vectors and computes rescaled
// cosine similarity. The index is process-wide shared state: construct it
// once at wiring time and reuse it; concurrent identical encodes are
// collapsed through singleflight, and vectors are cached in redis when a
// client is provided.
type EmbeddingIndex struct {
	log      *logger.Logger
	embedder Embedder
	dim      int
	model    string
	cache    *redis.Client
	cacheTTL time.Duration
	group    singleflight.Group
}

func NewEmbeddingIndex(log *logger.Logger, embedder Embedder, dim int, model string, cache *redis.Client) *EmbeddingIndex {
	if dim <= 0 {
		dim = 1536
	}
	return &EmbeddingIndex{
		log:      log.With("service", "EmbeddingIndex"),
		embedder: embedder,
		dim:      dim,
		model:    model,
		cache:    cache,
		cacheTTL: 24 * time.Hour,
	}
}

func (x *EmbeddingIndex) Dim() int { return x.dim }

// Encode returns the vector for text. Empty or whitespace-only text encodes
// to a zero vector without touching the model.
func (x *EmbeddingIndex) Encode(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, x.dim), nil
	}

	key := x.cacheKey(trimmed)
	if vec := x.cacheGet(ctx, key); vec != nil {
		return vec, nil
	}

	v, err, _ := x.group.Do(key, func() (interface{}, error) {
		vecs, err := x.embedder.Embed(ctx, []string{trimmed})
		if err != nil {
			return nil, err
		}
		if len(vecs) != 1 {
			return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
		}
		x.cacheSet(ctx, key, vecs[0])
		return vecs[0], nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

// EncodeBatch encodes texts in one model call, skipping empty entries. The
// output always has one row per input; empty inputs map to zero rows at
// their original index.
func (x *EmbeddingIndex) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, len(texts))
	var missTexts []string
	var missIndices []int

	for i, text := range texts {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			out[i] = make([]float32, x.dim)
			continue
		}
		if vec := x.cacheGet(ctx, x.cacheKey(trimmed)); vec != nil {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, trimmed)
		missIndices = append(missIndices, i)
	}

	if len(missTexts) > 0 {
		vecs, err := x.embedder.Embed(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(missTexts) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(missTexts), len(vecs))
		}
		for j, vec := range vecs {
			out[missIndices[j]] = vec
			x.cacheSet(ctx, x.cacheKey(missTexts[j]), vec)
		}
	}
	return out, nil
}

// Similarity computes cosine similarity of query against each candidate,
// rescaled from [-1,1] to [0,1] via (cos+1)/2. A similarity of 0.5 means
// orthogonal; downstream thresholds assume exactly this rescaling.
func (x *EmbeddingIndex) Similarity(query []float32, candidates [][]float32) []float64 {
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		out[i] = (cosine(query, c) + 1) / 2
	}
	return out
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := 0; i < len(a); i++ {
		xv := float64(a[i])
		yv := float64(b[i])
		dot += xv * yv
		na += xv * xv
		nb += yv * yv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (x *EmbeddingIndex) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(x.model + "\x00" + text))
	return "emb:" + x.model + ":" + hex.EncodeToString(sum[:])
}

func (x *EmbeddingIndex) cacheGet(ctx context.Context, key string) []float32 {
	if x.cache == nil {
		return nil
	}
	raw, err := x.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			x.log.Debug("embedding cache get failed", "error", err)
		}
		return nil
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil || len(vec) == 0 {
		return nil
	}
	return vec
}

func (x *EmbeddingIndex) cacheSet(ctx context.Context, key string, vec []float32) {
	if x.cache == nil {
		return
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := x.cache.Set(ctx, key, raw, x.cacheTTL).Err(); err != nil {
		x.log.Debug("embedding cache set failed", "error", err)
	}
}
