package docker

// GAUGE(cpu_usage): Nanoseconds of CPU time used by the container since it started

// GAUGE(max_mem): Maximum measured memory usage of the container, in bytes

// GAUGE(blk_in): Bytes read by the container from block devices

// GAUGE(blk_out): Bytes written by the container to block devices

// GAUGE(net_in): Bytes received by the container on eth0

// GAUGE(net_out): Bytes sent by the container on eth0

// DERIVE(blk_in_rate): Bytes read from block devices, as a rate

// DERIVE(blk_out_rate): Bytes written to block devices, as a rate

// DERIVE(net_in_rate): Bytes received on eth0, as a rate

// DERIVE(net_out_rate): Bytes sent on eth0, as a rate
