package query

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type searchResponse struct {
	Aggregations map[string]struct {
		Buckets []map[string]json.RawMessage `json:"buckets"`
	} `json:"aggregations"`
}

type metricAggregation struct {
	Value *float64 `json:"value"`
}

type topHitsAggregation struct {
	Hits struct {
		Hits []struct {
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// ContainerSnapshot is the newest document indexed for one container
type ContainerSnapshot struct {
	TypeInstance string
	Timestamp    time.Time
	Document     map[string]interface{}
}

// ContainerMaxima holds the largest value of each data source seen for one
// container
type ContainerMaxima struct {
	TypeInstance string
	DocCount     int64
	LastUpdate   time.Time
	// Data sources without any value in the window are left out
	Maxima map[string]float64
}

func (r *searchResponse) containerBuckets() []map[string]json.RawMessage {
	return r.Aggregations[containersAggName].Buckets
}

func bucketKey(b map[string]json.RawMessage) (string, int64, error) {
	var key string
	if err := json.Unmarshal(b["key"], &key); err != nil {
		return "", 0, errors.Wrap(err, "bucket has no string key")
	}
	var count int64
	if raw, ok := b["doc_count"]; ok {
		if err := json.Unmarshal(raw, &count); err != nil {
			return "", 0, errors.Wrapf(err, "bucket %s has a bad doc_count", key)
		}
	}
	return key, count, nil
}

func decodeLatest(resp *searchResponse) ([]ContainerSnapshot, error) {
	var out []ContainerSnapshot
	for _, b := range resp.containerBuckets() {
		key, _, err := bucketKey(b)
		if err != nil {
			return nil, err
		}

		var th topHitsAggregation
		if err := json.Unmarshal(b[mostRecentAggName], &th); err != nil {
			return nil, errors.Wrapf(err, "bucket %s has no %s aggregation", key, mostRecentAggName)
		}
		if len(th.Hits.Hits) == 0 {
			continue
		}

		doc := th.Hits.Hits[0].Source
		snap := ContainerSnapshot{
			TypeInstance: key,
			Document:     doc,
		}
		if ts, ok := doc[timestampField].(string); ok {
			if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				snap.Timestamp = parsed
			}
		}
		out = append(out, snap)
	}
	return out, nil
}

func decodeMaxima(resp *searchResponse, dsNames []string) ([]ContainerMaxima, error) {
	var out []ContainerMaxima
	for _, b := range resp.containerBuckets() {
		key, count, err := bucketKey(b)
		if err != nil {
			return nil, err
		}

		cm := ContainerMaxima{
			TypeInstance: key,
			DocCount:     count,
			Maxima:       make(map[string]float64, len(dsNames)),
		}

		if v, err := metricValue(b, lastUpdateAggName); err != nil {
			return nil, errors.Wrapf(err, "bucket %s", key)
		} else if v != nil {
			// max on a date field is in epoch millis
			cm.LastUpdate = time.Unix(0, int64(*v)*int64(time.Millisecond)).UTC()
		}

		for _, name := range dsNames {
			v, err := metricValue(b, name)
			if err != nil {
				return nil, errors.Wrapf(err, "bucket %s", key)
			}
			if v != nil {
				cm.Maxima[name] = *v
			}
		}
		out = append(out, cm)
	}
	return out, nil
}

func metricValue(b map[string]json.RawMessage, name string) (*float64, error) {
	raw, ok := b[name]
	if !ok {
		return nil, nil
	}
	var agg metricAggregation
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, errors.Wrapf(err, "could not decode aggregation %s", name)
	}
	return agg.Value, nil
}
