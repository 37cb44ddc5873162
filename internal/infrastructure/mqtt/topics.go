package mqtt

import (
	"fmt"
	"strings"
)

const (
	// TopicPrefix is the root of every topic this service publishes.
	TopicPrefix = "isp"

	// TopicPrefixInvocations is the base for invocation events.
	TopicPrefixInvocations = TopicPrefix + "/invocations"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for the service's MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.Invocation("phone", "make_call")
//	// Returns: "isp/invocations/phone/make_call"
type Topics struct{}

// Invocation returns the topic for one device operation.
//
// Example: isp/invocations/tablet/power_on
func (Topics) Invocation(variant, operation string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixInvocations, variant, operation)
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: isp/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// ValidSegment reports whether s can be used as a single topic level.
// Empty segments and those containing '/', '+', '#' or NUL are rejected.
func ValidSegment(s string) bool {
	return s != "" && !strings.ContainsAny(s, "/+#\x00")
}
