package publisher

// Publisher fans qualifying deals out to downstream consumers.
type Publisher interface {
	// Publish appends a deal payload to the stream under the given key
	// (the source site name).
	Publish(key string, message []byte) error

	// Close closes the publisher connection
	Close() error
}
