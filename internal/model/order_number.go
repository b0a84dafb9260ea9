package model

import "crypto/rand"

const (
	orderNumberLen     = 10
	orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewOrderNumber returns a 10-character uppercase-alphanumeric order number.
// Collisions are possible and must be handled by the unique constraint on
// orders.order_number plus an insert retry.
func NewOrderNumber() string {
	buf := make([]byte, orderNumberLen)
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
	}
	return string(buf)
}
