// Package index implements the two concrete similarity indexes the
// predicate package's canopy/search predicates query through the
// predicate.Index interface: a TF-IDF cosine index over an HNSW graph,
// and an edit-distance index over q-gram postings.
package index

import (
	"math"
	"sort"
	"strings"

	"github.com/fogfish/hnsw"
	hnswvector "github.com/fogfish/hnsw/vector"
	kvector "github.com/kshard/vector"
)

// TfidfIndex is the cosine-similarity index backing TfidfCanopy and
// TfidfSearch predicates. Grounded on the teacher's pkg/vector.Store:
// same HNSW + kshard/vector cosine surface, same Insert/Search shape.
// Unlike the teacher's incremental store, Index(docs) here is called
// once per field with every distinct preprocessed value a field's
// index predicates will ever need (Fingerprinter.IndexAll collects the
// full distinct set up front), so the TF-IDF vocabulary is finalized
// in one pass before any vector is inserted.
type TfidfIndex struct {
	graph   *hnsw.HNSW[hnswvector.VF32]
	docs    []string
	docToID map[string]int
	vocab   map[string]int
	df      []int
}

// NewTfidfIndex returns an empty index.
func NewTfidfIndex() *TfidfIndex {
	return &TfidfIndex{
		graph:   hnsw.New[hnswvector.VF32](hnswvector.SurfaceVF32(kvector.Cosine())),
		docToID: make(map[string]int),
		vocab:   make(map[string]int),
	}
}

// Index assigns stable doc ids to every distinct doc key (already
// preprocessed and term-joined on "\x1f" by predicate.Predicate) not
// already indexed, (re)builds the TF-IDF vocabulary over the full
// corpus, and inserts every doc's vector into the HNSW graph.
//
// The whole graph is rebuilt on each call rather than incrementally
// extended: a newly indexed value can grow the vocabulary (a term
// never seen before), which changes every existing doc's IDF weight
// and therefore its vector. A Fingerprinter calls Index(values) once
// per field before training begins, so this is a one-time cost, not a
// per-record cost during blocking.
func (idx *TfidfIndex) Index(values []string) {
	for _, v := range values {
		if _, ok := idx.docToID[v]; ok {
			continue
		}
		id := len(idx.docs)
		idx.docs = append(idx.docs, v)
		idx.docToID[v] = id
	}
	idx.rebuild()
}

// Unindex drops values from the corpus and rebuilds the graph.
func (idx *TfidfIndex) Unindex(values []string) {
	for _, v := range values {
		id, ok := idx.docToID[v]
		if !ok {
			continue
		}
		delete(idx.docToID, v)
		idx.docs[id] = ""
	}
	idx.rebuild()
}

func (idx *TfidfIndex) terms(doc string) []string {
	if doc == "" {
		return nil
	}
	return strings.Split(doc, "\x1f")
}

func (idx *TfidfIndex) rebuild() {
	vocab := make(map[string]int)
	var df []int
	for _, doc := range idx.docs {
		seen := make(map[string]bool)
		for _, t := range idx.terms(doc) {
			if !seen[t] {
				seen[t] = true
				if _, ok := vocab[t]; !ok {
					vocab[t] = len(df)
					df = append(df, 0)
				}
				df[vocab[t]]++
			}
		}
	}
	idx.vocab = vocab
	idx.df = df

	idx.graph = hnsw.New[hnswvector.VF32](hnswvector.SurfaceVF32(kvector.Cosine()))
	n := float64(len(idx.docs))
	for id, doc := range idx.docs {
		if doc == "" {
			continue
		}
		idx.graph.Insert(hnswvector.VF32{Key: uint32(id), Vec: idx.vectorOf(doc, n)})
	}
}

func (idx *TfidfIndex) vectorOf(doc string, n float64) []float32 {
	vec := make([]float32, len(idx.vocab))
	counts := make(map[string]int)
	terms := idx.terms(doc)
	for _, t := range terms {
		counts[t]++
	}
	for t, c := range counts {
		pos, ok := idx.vocab[t]
		if !ok {
			continue
		}
		tf := float64(c) / float64(len(terms))
		idf := math.Log(1+n/float64(1+idx.df[pos])) + 1
		vec[pos] = float32(tf * idf)
	}
	return vec
}

// DocToID implements predicate.Index.
func (idx *TfidfIndex) DocToID(doc string) (int, bool) {
	id, ok := idx.docToID[doc]
	return id, ok
}

// Search implements predicate.Index: approximate cosine-kNN over the
// HNSW graph, then a threshold post-filter, exactly the teacher's
// "Search(query, k, ef) then filter" shape (pkg/vector/store.go).
// k is the whole corpus, since a similarity threshold (not a fixed
// neighbour count) determines membership — the graph search widens
// the candidate set, the threshold narrows it back down.
func (idx *TfidfIndex) Search(doc string, threshold float64) []int {
	if len(idx.docs) == 0 {
		return nil
	}
	k := len(idx.docs)
	ef := k * 2
	if ef < 100 {
		ef = 100
	}

	query := hnswvector.VF32{Vec: idx.vectorOf(doc, float64(len(idx.docs)))}
	results := idx.graph.Search(query, k, ef)

	out := make([]int, 0, len(results))
	for _, r := range results {
		if cosineSimilarity(query.Vec, r.Vec) >= threshold {
			out = append(out, int(r.Key))
		}
	}
	sort.Ints(out)
	return out
}

// cosineSimilarity is computed directly rather than through
// kshard/vector's Distance API (used only as the HNSW graph's surface,
// mirroring the teacher's pkg/vector.Store) to keep the threshold
// filter independent of that package's internal distance convention.
func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
	}
	for _, v := range b {
		nb += float64(v) * float64(v)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
