// Package market stores per-album and per-track market availability as a fixed-length bitset.
//
// The canonical enumeration is the 249 ISO 3166-1 alpha-2 country codes in ascending order.
// Code i maps to bit i%8 (least significant bit first) of byte i/8, so an [Availability] always
// encodes to exactly [ByteLen] bytes. The layout is a persisted column format: the order of
// [Codes] must never change.
package market
