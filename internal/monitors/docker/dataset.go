package docker

import (
	"io"
	"os"
	"strings"

	"collectd.org/api"
	"github.com/pkg/errors"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
)

// The collectd type that every value list is dispatched as
const typeName = "docker"

// The types.db line used when no types.db is configured.  The rate variants
// mirror the byte counters and let the sink derive a rate.
const defaultTypesDB = typeName + " cpu_usage:GAUGE:0:U, max_mem:GAUGE:0:U, " +
	"blk_in:GAUGE:0:U, blk_out:GAUGE:0:U, net_in:GAUGE:0:U, net_out:GAUGE:0:U, " +
	"blk_in_rate:DERIVE:0:U, blk_out_rate:DERIVE:0:U, net_in_rate:DERIVE:0:U, net_out_rate:DERIVE:0:U\n"

// The record field behind each known data source name
var dsFields = map[string]func(*MetricRecord) uint64{
	"cpu_usage":    func(r *MetricRecord) uint64 { return r.CPUUsageTotal },
	"max_mem":      func(r *MetricRecord) uint64 { return r.MaxMemoryUsage },
	"blk_in":       func(r *MetricRecord) uint64 { return r.BlockIOReadBytes },
	"blk_out":      func(r *MetricRecord) uint64 { return r.BlockIOWriteBytes },
	"net_in":       func(r *MetricRecord) uint64 { return r.NetworkRxBytes },
	"net_out":      func(r *MetricRecord) uint64 { return r.NetworkTxBytes },
	"blk_in_rate":  func(r *MetricRecord) uint64 { return r.BlockIOReadBytes },
	"blk_out_rate": func(r *MetricRecord) uint64 { return r.BlockIOWriteBytes },
	"net_in_rate":  func(r *MetricRecord) uint64 { return r.NetworkRxBytes },
	"net_out_rate": func(r *MetricRecord) uint64 { return r.NetworkTxBytes },
}

// DefaultDataset is the schema of the `docker` type used when no types.db is
// configured
func DefaultDataset() *api.DataSet {
	ds, err := ParseTypesDB(strings.NewReader(defaultTypesDB))
	if err != nil {
		panic("built-in docker type does not parse: " + err.Error())
	}
	return ds
}

// recordValues lays out rec in the order of the dataset, converted to each
// data source's type
func recordValues(ds *api.DataSet, rec *MetricRecord) ([]api.Value, error) {
	args := make([]interface{}, len(ds.Sources))
	for i := range ds.Sources {
		field, ok := dsFields[ds.Sources[i].Name]
		if !ok {
			return nil, errors.Errorf("no metric behind data source '%s'", ds.Sources[i].Name)
		}
		args[i] = field(rec)
	}
	return ds.Values(args...)
}

// LoadTypesDB reads the `docker` type out of a collectd types.db file
func LoadTypesDB(path string) (*api.DataSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, config.NewConfigurationError("typesDB", "could not open %s: %v", path, err)
	}
	defer f.Close()

	return ParseTypesDB(f)
}

// ParseTypesDB finds the `docker` type in types.db content, e.g.
//
//   docker  cpu_usage:GAUGE:0:U, max_mem:GAUGE:0:U, blk_in_rate:DERIVE:0:U
//
// Lines that collectd cannot parse are skipped, the same way collectd itself
// treats them.  Every data source must be one the collector knows how to
// fill.
func ParseTypesDB(r io.Reader) (*api.DataSet, error) {
	db, err := api.NewTypesDB(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read types.db")
	}

	ds, ok := db.DataSet(typeName)
	if !ok {
		return nil, config.NewConfigurationError("typesDB", "no '%s' type declared", typeName)
	}
	if len(ds.Sources) == 0 {
		return nil, config.NewConfigurationError("typesDB", "the '%s' type has no data sources", typeName)
	}

	seen := map[string]bool{}
	for _, src := range ds.Sources {
		if _, known := dsFields[src.Name]; !known {
			return nil, config.NewConfigurationError("typesDB", "unknown data source '%s'", src.Name)
		}
		if seen[src.Name] {
			return nil, config.NewConfigurationError("typesDB", "data source '%s' declared twice", src.Name)
		}
		seen[src.Name] = true
	}
	return ds, nil
}
