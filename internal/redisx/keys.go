package redisx

import "time"

const (
	// Replay idempotency: idem:{target_type}:{key} -> response body tersimpan
	KeyIdemResponse = "idem:%s:%s"

	// Cache body order: order:{order_id} -> order ter-serialize terakhir
	KeyOrderBody = "order:%d"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLOrderCache  = 5 * time.Minute
)
