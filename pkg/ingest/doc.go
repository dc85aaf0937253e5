/*
Package ingest turns externally sourced node-creation messages into diagram nodes.

A host (a parent page, a pub/sub channel, a file) sends JSON envelopes:

	{"type": "ADD_NODES", "payload": [{"model": "Router-X", "pins": [...]}, ...]}

The payload is one device record or a sequence of them. Records are untyped: they
are decoded leniently with mapstructure and every missing field is defaulted, so a
record is repaired rather than rejected. Entries that are not objects at all are
skipped and logged. Nodes of one message are appended in array order.

Channel.Subscribe binds the channel to a ports.MessageSource for the lifetime of
the returned Subscription; Close releases the listener.
*/
package ingest
