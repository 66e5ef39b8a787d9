package bus

type Config struct {
	ChannelPrefix string `env:"BUS_CHANNEL_PREFIX" envDefault:"roomkit:bus:"` // ChannelPrefix namespaces event channels in the shared backend.
	BufferSize    int    `env:"BUS_BUFFER_SIZE" envDefault:"64"`              // BufferSize is the per-subscriber channel buffer.
}

// DefaultConfig returns the config used when none is supplied.
func DefaultConfig() Config {
	return Config{
		ChannelPrefix: "roomkit:bus:",
		BufferSize:    64,
	}
}
