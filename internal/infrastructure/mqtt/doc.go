// Package mqtt publishes ISP Devices events to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS validation and a payload size cap
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// The service only publishes. Every device operation served over HTTP is
// sent as JSON to isp/invocations/{variant}/{operation}, and the service's
// online/offline state is retained on isp/system/status.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.Invocation("tablet", "power_on")
//	err = client.Publish(topic, payload, 1, false)
//
// A broker-backed test suite runs with:
//
//	go test -tags=integration ./internal/infrastructure/mqtt/...
package mqtt
