// Package influxdb counts device invocations in InfluxDB.
//
// Each device operation served over HTTP becomes one point in the
// device_invocations measurement, tagged by variant and operation with
// an integer field count=1. Summing count over a window gives usage per
// variant and operation.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteInvocationAt("tablet", "power_on", time.Now())
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Write failures arrive asynchronously through SetOnError.
// Connection and health check errors are returned directly.
package influxdb
