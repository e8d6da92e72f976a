package index

import "time"

// QuerySpec is the structured retrieval request handed to the index: hard
// must filters, weighted should clauses, a minimum-should-match policy, a
// result bound and an optional recency sort. The executor translates it
// verbatim into one bool query; it never reorders or re-weights clauses.
type QuerySpec struct {
	Must               []map[string]any
	Should             []map[string]any
	MinimumShouldMatch int
	Size               int
	SortByCreatedDesc  bool
}

// Body renders the spec as an Elasticsearch request body. When no must
// filter is present a match_all placeholder keeps the bool query valid
// without changing which hits qualify.
func (q QuerySpec) Body() map[string]any {
	must := q.Must
	if len(must) == 0 {
		must = []map[string]any{{"match_all": map[string]any{}}}
	}

	body := map[string]any{
		"size": q.Size,
		"query": map[string]any{
			"bool": map[string]any{
				"must":                 must,
				"should":               q.Should,
				"minimum_should_match": q.MinimumShouldMatch,
			},
		},
	}
	if q.SortByCreatedDesc {
		body["sort"] = []map[string]any{
			{"created_at": map[string]any{"order": "desc"}},
		}
	}
	return body
}

// TermFilter is an equality filter on a keyword field.
func TermFilter(field, value string) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}

// DateRangeFilter is an inclusive day-granularity range on a date field.
func DateRangeFilter(field string, start, end time.Time) map[string]any {
	return map[string]any{
		"range": map[string]any{
			field: map[string]any{
				"gte": start.Format("2006-01-02") + "T00:00:00Z",
				"lte": end.Format("2006-01-02") + "T23:59:59Z",
			},
		},
	}
}

// MatchClause is a scored keyword match with an explicit weight.
func MatchClause(field, text string, boost float64) map[string]any {
	return map[string]any{
		"match": map[string]any{
			field: map[string]any{"query": text, "boost": boost},
		},
	}
}

// KNNClause is a scored vector-similarity clause against the embedding field.
func KNNClause(field string, vector []float32, k int, boost float64) map[string]any {
	return map[string]any{
		"knn": map[string]any{
			"field":          field,
			"query_vector":   vector,
			"num_candidates": k * 2,
			"boost":          boost,
		},
	}
}
