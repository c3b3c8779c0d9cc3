package badger

// Key prefixes for different data types
const (
	chunkPrefix = "chunk:"
)

// makeChunkKey generates a key for a chunk by its external id.
// Chunk ids embed the source URL and are unique, so they are used verbatim.
func makeChunkKey(id string) []byte {
	return []byte(chunkPrefix + id)
}

// chunkIDFromKey recovers the external id from a chunk key.
func chunkIDFromKey(key []byte) string {
	return string(key[len(chunkPrefix):])
}
