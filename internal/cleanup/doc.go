// Package cleanup implements the resumable, time-boxed removal of queued rows
// from the source tab.
//
// A cycle begins when an invocation finds a non-empty deletion queue and no
// persisted state: the queue is snapshotted into a new cycle. Each invocation
// then runs one pass: a bottom-up chunked scan of the source tab that removes
// every remaining queued row not protected by a recent edit. Progress is
// checkpointed after every chunk, so a budget cutoff or crash costs at most
// one chunk of rescanning.
//
// A cycle ends when nothing remains or the pass cap is hit. Either way exactly
// one consolidated report goes out, covering every pass of the cycle, and the
// queue and state are cleared. Intermediate passes are silent.
package cleanup
