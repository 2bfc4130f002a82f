package mqtt

import "errors"

// Sentinel errors for broker operations. Wrapped errors carry the
// underlying cause; match with errors.Is.
var (
	// ErrNotConnected means the operation needs a live broker connection.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrConnectionFailed means the initial broker handshake failed.
	ErrConnectionFailed = errors.New("mqtt: connect failed")

	// ErrPublishFailed means a publish was rejected or never acked.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed means a subscribe was rejected or never acked.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed means an unsubscribe was rejected or never acked.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS means the QoS level was outside 0..2.
	ErrInvalidQoS = errors.New("mqtt: qos must be 0, 1, or 2")

	// ErrInvalidTopic means the topic was empty.
	ErrInvalidTopic = errors.New("mqtt: empty topic")

	// ErrTimeout means the broker did not ack within the deadline.
	ErrTimeout = errors.New("mqtt: timed out waiting for broker ack")
)
