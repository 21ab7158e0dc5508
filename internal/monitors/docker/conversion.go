package docker

import (
	"strings"

	dtypes "github.com/docker/docker/api/types"
)

// The interface whose counters are reported.  Containers attached to more
// than one network only have their first interface counted.
const primaryInterface = "eth0"

// MetricRecord is the normalized set of counters taken from one stats
// snapshot.  Every field is always set; anything missing from the snapshot
// is zero.
type MetricRecord struct {
	// Cumulative CPU time consumed by the container, in nanoseconds
	CPUUsageTotal uint64
	// Peak memory usage observed by the engine, in bytes
	MaxMemoryUsage uint64
	// Bytes read from block devices
	BlockIOReadBytes uint64
	// Bytes written to block devices
	BlockIOWriteBytes uint64
	// Bytes received on the primary interface
	NetworkRxBytes uint64
	// Bytes sent on the primary interface
	NetworkTxBytes uint64
}

// ConvertStats reduces an engine stats snapshot to a MetricRecord.  A nil
// snapshot gives the zero record.
func ConvertStats(stats *dtypes.StatsJSON) MetricRecord {
	var rec MetricRecord
	if stats == nil {
		return rec
	}

	rec.MaxMemoryUsage = stats.MemoryStats.MaxUsage
	rec.CPUUsageTotal = stats.CPUStats.CPUUsage.TotalUsage
	rec.BlockIOReadBytes, rec.BlockIOWriteBytes = convertBlkioStats(&stats.BlkioStats)
	rec.NetworkRxBytes, rec.NetworkTxBytes = convertNetworkStats(stats.Networks)

	return rec
}

// A container with several block devices has one entry per device and op.
// The last Read and Write entries win.
func convertBlkioStats(stats *dtypes.BlkioStats) (read uint64, write uint64) {
	for _, bs := range stats.IoServiceBytesRecursive {
		switch strings.ToLower(bs.Op) {
		case "read":
			read = bs.Value
		case "write":
			write = bs.Value
		}
	}
	return read, write
}

func convertNetworkStats(stats map[string]dtypes.NetworkStats) (rx uint64, tx uint64) {
	s, ok := stats[primaryInterface]
	if !ok {
		return 0, 0
	}
	return s.RxBytes, s.TxBytes
}
