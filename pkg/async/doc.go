// Package async provides generic futures for running computations
// concurrently and joining their results.
//
// A Future is obtained from Async, which starts the supplied function in its
// own goroutine. Await blocks until completion; WaitAll joins a batch. The
// publish finalizer uses one future per staged piece to fan uploads out to
// the content store.
//
//	future := async.Async(ctx, piece, upload)
//	ref, err := future.Await()
package async
