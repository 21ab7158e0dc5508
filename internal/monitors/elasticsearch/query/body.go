package query

import (
	"time"
)

const (
	containersAggName  = "containers"
	mostRecentAggName  = "most_recent"
	lastUpdateAggName  = "last_update"
	timestampField     = "@timestamp"
	typeInstanceField  = "type_instance.keyword"
	defaultBucketCount = 1000
)

// latestPerContainerBody groups documents newer than since by type instance
// and keeps the newest document of each group
func latestPerContainerBody(since time.Time, buckets int) map[string]interface{} {
	return map[string]interface{}{
		"size":  0,
		"query": sinceQuery(since),
		"aggs": map[string]interface{}{
			containersAggName: map[string]interface{}{
				"terms": termsAgg(buckets),
				"aggs": map[string]interface{}{
					mostRecentAggName: map[string]interface{}{
						"top_hits": map[string]interface{}{
							"sort": []interface{}{
								map[string]interface{}{
									timestampField: map[string]interface{}{"order": "desc"},
								},
							},
							"size": 1,
						},
					},
				},
			},
		},
	}
}

// maximaPerContainerBody groups documents by type instance and takes the
// maximum of every data source plus the newest timestamp.  A zero since
// looks at the whole index.
func maximaPerContainerBody(since time.Time, buckets int, dsNames []string) map[string]interface{} {
	subAggs := map[string]interface{}{
		lastUpdateAggName: maxAgg(timestampField),
	}
	for _, name := range dsNames {
		subAggs[name] = maxAgg(name)
	}

	body := map[string]interface{}{
		"size": 0,
		"aggs": map[string]interface{}{
			containersAggName: map[string]interface{}{
				"terms": termsAgg(buckets),
				"aggs":  subAggs,
			},
		},
	}
	if !since.IsZero() {
		body["query"] = sinceQuery(since)
	}
	return body
}

func sinceQuery(since time.Time) map[string]interface{} {
	return map[string]interface{}{
		"range": map[string]interface{}{
			timestampField: map[string]interface{}{
				"gte":    since.UnixNano() / int64(time.Millisecond),
				"format": "epoch_millis",
			},
		},
	}
}

func termsAgg(buckets int) map[string]interface{} {
	if buckets <= 0 {
		buckets = defaultBucketCount
	}
	return map[string]interface{}{
		"field": typeInstanceField,
		"size":  buckets,
	}
}

func maxAgg(field string) map[string]interface{} {
	return map[string]interface{}{
		"max": map[string]interface{}{"field": field},
	}
}
