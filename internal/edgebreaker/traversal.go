package edgebreaker

// MEntry is one hole record: (skip_count, hole_length), spec §3.
type MEntry struct {
	Skip   int
	Length int
}

// HEntry is one handle record: (position, offset, skip_count), spec §3.
type HEntry struct {
	Position int
	Offset   int
	Skip     int
}

// SEntry is one S-split offset record: (s_index, offset), spec §3.
type SEntry struct {
	Index  int
	Offset int
}

// Triangle is an emitted (prev-on-gate, gate, newly-incident) facet, in
// the order the spec's predictor needs it (spec §3, "Triangle facet").
type Triangle struct {
	A, B, C int
}

// TraversalState consolidates the encoder/decoder's scattered mutable
// counters into one struct passed by reference, per spec §9's Design
// Notes ("Global mutable counters... consolidate them into a single
// TraversalState struct").
type TraversalState struct {
	SkipM, SkipH int
	SCount       int // s_cnt: count of genuine S-splits seen so far
	MCount       int
	HCount       int
	TriangleCnt  int
	ProcessedCnt int
	VertexCount  int
	EVertex      int
}

// encFrame (defined in encoder.go) and the decoder's equivalent are the
// saved-sub-mesh work-stack entries, pushed when an S-split occurs and
// popped when its matching E or H is reached. Spec §9 Design Notes
// prefers this explicit work stack over natural recursion.
