// Package reasoning inserts machine translations of reasoning blocks into a
// live transcript without reordering it.
//
// A Translator sits between the host stream and the output sink. When it
// emits a translatable item it opens a barrier and starts one asynchronous
// translation; items arriving while the barrier is open are deferred. The
// barrier closes when the matching completion is drained on Tick or when its
// deadline passes, at which point the translation (or a failure notice) is
// emitted directly after its source and the deferred items are flushed.
package reasoning
