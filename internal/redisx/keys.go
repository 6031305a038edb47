package redisx

import "time"

const (
	// Visitor session: promo:session:{session_id} -> JSON session record
	KeySession = "promo:session:%s"

	// Cart hash: promo:cart:{session_id}:{campaign_token} -> product_code => qty
	KeyCart = "promo:cart:%s:%s"

	// Dedup event processing: promo:dedup:{service}:{event_id}
	KeyDedup = "promo:dedup:%s:%s"
)

var (
	TTLCart  = 2 * time.Hour
	TTLDedup = 48 * time.Hour
)
