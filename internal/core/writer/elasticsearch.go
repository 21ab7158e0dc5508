package writer

import (
	"context"
	"time"

	"collectd.org/api"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
	"github.com/signalfx/docker-stats-agent/internal/monitors/elasticsearch/client"
)

// Document fields that metadata entries may not overwrite
var reservedDocFields = map[string]bool{
	"@timestamp":      true,
	"host":            true,
	"plugin":          true,
	"plugin_instance": true,
	"type":            true,
	"type_instance":   true,
	"interval":        true,
}

// elasticsearchSink indexes one document per value list
type elasticsearchSink struct {
	client client.ESHttpClient
	index  string
}

func newElasticsearchSink(conf *config.WriterConfig) (*elasticsearchSink, error) {
	httpClient, err := conf.HTTPConfig.Build()
	if err != nil {
		return nil, err
	}
	es, err := client.NewESClient(conf.URL, httpClient)
	if err != nil {
		return nil, err
	}
	return &elasticsearchSink{
		client: es,
		index:  conf.Index,
	}, nil
}

// toDocument flattens a value list.  Data sources become numeric fields and
// metadata entries become string fields, so that the index can be searched
// and aggregated per container.
func toDocument(vl *api.ValueList) map[string]interface{} {
	doc := map[string]interface{}{
		"@timestamp":    vl.Time.UTC().Format(time.RFC3339Nano),
		"host":          vl.Host,
		"plugin":        vl.Plugin,
		"type":          vl.Type,
		"type_instance": vl.TypeInstance,
		"interval":      vl.Interval.Seconds(),
	}
	if vl.PluginInstance != "" {
		doc["plugin_instance"] = vl.PluginInstance
	}

	for i, v := range vl.Values {
		doc[vl.DSName(i)] = numericValue(v)
	}

	for k, v := range vl.Meta {
		if reservedDocFields[k] {
			continue
		}
		if _, isDS := doc[k]; isDS {
			logger.WithField("key", k).Debug("Metadata key clashes with a data source, leaving it out of the document")
			continue
		}
		doc[k] = v.String()
	}
	return doc
}

func numericValue(v api.Value) interface{} {
	switch n := v.(type) {
	case api.Gauge:
		return float64(n)
	case api.Derive:
		return int64(n)
	case api.Counter:
		return uint64(n)
	}
	return nil
}

func (s *elasticsearchSink) Write(ctx context.Context, vl *api.ValueList) error {
	return s.client.IndexDocument(ctx, s.index, toDocument(vl))
}

func (s *elasticsearchSink) Flush(ctx context.Context) error {
	return nil
}

func (s *elasticsearchSink) Close() error {
	return nil
}
