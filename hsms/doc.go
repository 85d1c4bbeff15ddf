// Package hsms implements the HSMS (SEMI E37) message wire layer: the 10-byte
// message header codec, data and control message types, a whole-buffer message
// decoder, and a streaming decoder that reassembles messages from a byte
// stream delivered in arbitrary-sized chunks.
//
// The streaming decoder performs no I/O. A transport reads from its socket
// directly into the decoder's writable tail and then calls Decode with the
// number of bytes written; completed messages are delivered synchronously
// through caller-provided handlers. MessageRouter can serve as those handlers
// to fan messages out by stream/function or control message type.
package hsms
