// Package resolver turns references into objects. Given a file and its
// cross-reference table it reads object bodies lazily, completes deferred
// stream payloads once their lengths are concrete, and can materialize a
// whole object graph with cycle detection.
package resolver
