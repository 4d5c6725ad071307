package transport

import "sync"

// chunkPool reuses chunkSize-byte receive buffers across iterations. A
// campaign that runs for millions of iterations would otherwise allocate a
// fresh 4096-byte buffer on every single receive call.
var chunkPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, chunkSize)
		return &buf
	},
}

// getChunk returns a pointer to a chunkSize-byte buffer from the pool.
// Callers must call putChunk to return it (use defer immediately after).
func getChunk() *[]byte {
	return chunkPool.Get().(*[]byte)
}

// putChunk returns a buffer to the pool. The caller must not use it again.
func putChunk(bufPtr *[]byte) {
	chunkPool.Put(bufPtr)
}
