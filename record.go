package binhash

import "encoding/binary"

// headerSize is the on-disk size in bytes of a record header: two signed
// 32-bit lengths plus a one-byte tombstone flag. This is the on-disk
// compatibility surface and must not change shape.
const headerSize = 4 + 4 + 1

// encodeHeader writes the fixed-size header for a record with the given key
// and value lengths and tombstone flag into buf[:headerSize]. buf must be at
// least headerSize bytes long.
//
// Lengths are written host-native (binary.NativeEndian), matching the
// reference implementation's raw struct write of a platform int.
func encodeHeader(buf []byte, keyLen, valueLen int32, tomb bool) {
	binary.NativeEndian.PutUint32(buf[0:4], uint32(keyLen))
	binary.NativeEndian.PutUint32(buf[4:8], uint32(valueLen))
	if tomb {
		buf[8] = 1
	} else {
		buf[8] = 0
	}
}

// decodeHeader parses a headerSize-byte buffer into lengths and a tombstone
// flag. It does not validate the lengths against the file size; callers
// combine this with the known file size to detect a truncated trailing
// record (see shard.go recover/scan).
func decodeHeader(buf []byte) (keyLen, valueLen int32, tomb bool) {
	keyLen = int32(binary.NativeEndian.Uint32(buf[0:4]))
	valueLen = int32(binary.NativeEndian.Uint32(buf[4:8]))
	tomb = buf[8] != 0
	return
}

// validHeader reports whether a decoded header describes a record whose
// full extent (header + key + value) fits within a file of size fileSize,
// starting at offset start. Negative lengths or an extent past end-of-file
// both mark the record (and everything after it) as not recoverable.
func validHeader(start int64, keyLen, valueLen int32, fileSize int64) bool {
	if keyLen < 0 || valueLen < 0 {
		return false
	}
	end := start + headerSize + int64(keyLen) + int64(valueLen)
	return end <= fileSize
}
