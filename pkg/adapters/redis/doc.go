// Package redis provides Redis-backed adapters: a diagram snapshot store,
// a distributed locker and a pub/sub ingestion source.
package redis
