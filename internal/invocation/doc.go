// Package invocation records the device operations served by the API.
//
// The request layer builds one Invocation per operation it runs and hands
// it to a Recorder. Devices never see this package.
//
// Recorders:
//   - SQLiteRepository: persistent trail, queryable via List
//   - Multi: fans one invocation out to several recorders and logs failures
//
// Other sinks (MQTT, InfluxDB, WebSocket) live next to their transports and
// satisfy Recorder through small adapters.
package invocation
