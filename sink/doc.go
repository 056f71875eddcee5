// Package sink provides destinations for assembled vehicle records.
//
// JSONLSink appends records to a local file, one JSON document per
// line. StreamSink publishes records to a JetStream subject for
// downstream processors. MultiSink fans a record out to several sinks
// at once.
package sink
