// Package classifier evaluates the transfer rules against source rows and
// yields routing decisions: reject with reasons, route to the archive or
// relocations tab, or skip as an already-transferred duplicate. Non-rejected
// rows feed the deletion queue.
package classifier
