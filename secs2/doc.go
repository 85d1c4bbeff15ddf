// Package secs2 implements the SECS-II data item model used by the HSMS wire layer.
//
// A SECS-II message body is a tree of items. Leaf items carry typed payloads
// (binary, boolean, ASCII, JIS-8, signed/unsigned integers of 1/2/4/8 bytes,
// 4/8-byte floats); list items carry an ordered, fixed-arity sequence of child
// items. Items are immutable after construction: decode paths build them once
// and hand them off, and Clone produces an independent copy when a consumer
// needs to derive a modified tree.
//
// Each item knows how to serialize itself back to the wire representation via
// ToBytes, which makes item trees round-trippable: decoding the encoding of an
// item yields a structurally equal tree.
package secs2
