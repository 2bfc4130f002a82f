// Package mqtt wraps the paho client for Hearthline Core's broker
// traffic: retained topology state, the change event stream, command
// intake, and the retained system status topic with an LWT.
//
// Subscriptions are tracked and restored automatically after a
// reconnect.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.EntityState("switch", "Porch")
//	client.PublishRetained(topic, payload)
package mqtt
