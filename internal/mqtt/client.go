package mqtt

// MQTTClient is the publishing surface other integrations build on.
type MQTTClient interface {
	GetPrefix() string
	Topics() *Topics
	Publish(topic string, payload interface{}, retain bool)
}
