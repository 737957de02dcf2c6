package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 100 * time.Millisecond
	DefaultProducerRequireAcks  = 1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = true

	DefaultAuditEnabled  = true
	DefaultAuditTopic    = "hallbook.audit"
	DefaultAuditDLQTopic = ""
)
