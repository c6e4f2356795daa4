package binhash

import "sync"

// headerBufPool recycles headerSize-byte scratch buffers used while scanning
// a shard's log. The scans behind insert/get/erase read one header per
// record they visit, so pooling avoids an allocation per scan on hot paths.
var headerBufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, headerSize)
		return &buf
	},
}

func getHeaderBuf() []byte {
	return *headerBufPool.Get().(*[]byte)
}

func putHeaderBuf(buf []byte) {
	if len(buf) == headerSize {
		headerBufPool.Put(&buf)
	}
}
