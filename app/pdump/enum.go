package pdump

// Limits and defaults.
const (
	MinFileSize     = 1 << 16
	DefaultFileSize = 1 << 24

	DefaultSnapLen       = 65535
	DefaultQueueCapacity = 4096
	MinQueueCapacity     = 64
)
