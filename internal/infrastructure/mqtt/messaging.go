package mqtt

import "fmt"

// maxPayloadSize caps a single message at 1 MiB, matching the default
// limit of common brokers.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic and blocks until the broker acks or
// the ack timeout elapses.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := validateTopicQoS(topic, qos); err != nil {
		return err
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %d byte payload exceeds %d byte limit",
			ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	return wait(c.paho.Publish(topic, qos, retained, payload), ackTimeout, ErrPublishFailed)
}

// PublishString is Publish for string payloads.
func (c *Client) PublishString(topic, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained state document at the configured
// QoS. Publishing a nil payload clears the retained message.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}

// Subscribe registers handler for topic (MQTT wildcards allowed) and
// tracks the subscription so it is restored after a reconnect.
// Subscribing to the same topic again replaces the handler.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := validateTopicQoS(topic, qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	if err := wait(c.paho.Subscribe(topic, qos, c.dispatch(handler)), ackTimeout, ErrSubscribeFailed); err != nil {
		return err
	}

	c.mu.Lock()
	c.subs[topic] = subscription{qos: qos, handler: handler}
	c.mu.Unlock()
	return nil
}

// Unsubscribe removes the subscription for topic. The topic is dropped
// from reconnect tracking even if the broker ack fails.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.mu.Lock()
	delete(c.subs, topic)
	c.mu.Unlock()

	return wait(c.paho.Unsubscribe(topic), ackTimeout, ErrUnsubscribeFailed)
}

// SubscriptionCount reports how many subscriptions are tracked for
// reconnect restoration.
func (c *Client) SubscriptionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// HasSubscription reports whether topic is tracked.
func (c *Client) HasSubscription(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subs[topic]
	return ok
}
