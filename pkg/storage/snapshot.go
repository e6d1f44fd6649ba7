package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/adfharrison1/go-entitystore/pkg/domain"
	"github.com/adfharrison1/go-entitystore/pkg/indexing"
)

const (
	// Magic bytes identifying a snapshot stream
	snapshotMagic = "GOES"
	// Current snapshot format version
	snapshotVersion = 1
	// Header flag set when the payload is stored uncompressed
	snapshotFlagUncompressed = 1 << 0
)

// ErrInvalidSnapshot is returned by Restore when the input is not a
// snapshot this version can decode.
var ErrInvalidSnapshot = errors.New("invalid snapshot format")

// snapshotHeader prefixes every snapshot stream.
type snapshotHeader struct {
	Magic    [4]byte // "GOES"
	Version  uint8   // Format version
	Flags    uint8   // Bit 0: payload stored uncompressed
	Reserved [2]byte // Reserved for future use
}

// snapshotData is the msgpack payload of a snapshot.
type snapshotData struct {
	Collections   map[string]map[string]map[string]interface{} `msgpack:"collections"`
	IndexedFields map[string][]string                          `msgpack:"indexed_fields"`
}

// Snapshot writes the full store state (entities and indexed-field
// configuration) to w as an lz4-compressed msgpack payload. The engine
// never touches the filesystem; callers own where the bytes go.
func (se *StorageEngine) Snapshot(w io.Writer) error {
	data := snapshotData{
		Collections:   make(map[string]map[string]map[string]interface{}),
		IndexedFields: make(map[string][]string),
	}

	se.mu.RLock()
	names := make([]string, 0, len(se.collections))
	for name := range se.collections {
		names = append(names, name)
	}
	se.mu.RUnlock()

	for _, name := range names {
		collection, exists := se.getCollection(name)
		if !exists {
			continue
		}
		se.withCollectionReadLock(name, func() {
			entities := make(map[string]map[string]interface{}, len(collection.Entities))
			for id, entity := range collection.Entities {
				entities[id] = map[string]interface{}(entity.Clone())
			}
			data.Collections[name] = entities
			data.IndexedFields[name] = se.indexEngine.Fields(name)
		})
	}

	payload, err := msgpack.Marshal(&data)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(payload)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(payload, compressed, hashTable[:])
	if err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}

	// CompressBlock reports incompressible input as n == 0; store the
	// payload raw in that case.
	body := compressed[:n]
	var flags uint8
	if n == 0 {
		body = payload
		flags = snapshotFlagUncompressed
	}

	header := snapshotHeader{
		Magic:   [4]byte{'G', 'O', 'E', 'S'},
		Version: snapshotVersion,
		Flags:   flags,
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(payload))); err != nil {
		return fmt.Errorf("failed to write snapshot size: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write snapshot payload: %w", err)
	}
	return nil
}

// Restore replaces the store's contents with a snapshot previously
// written by Snapshot, rebuilding every index from the restored
// entities. The read cache is purged; cache counters are untouched.
// Restore must not run concurrently with other store operations.
func (se *StorageEngine) Restore(r io.Reader) error {
	var header snapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if string(header.Magic[:]) != snapshotMagic {
		return fmt.Errorf("%w: bad magic %q", ErrInvalidSnapshot, string(header.Magic[:]))
	}
	if header.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, header.Version)
	}

	var payloadSize uint32
	if err := binary.Read(r, binary.LittleEndian, &payloadSize); err != nil {
		return fmt.Errorf("failed to read snapshot size: %w", err)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot payload: %w", err)
	}

	payload := body
	if header.Flags&snapshotFlagUncompressed == 0 {
		payload = make([]byte, payloadSize)
		n, err := lz4.UncompressBlock(body, payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		payload = payload[:n]
	}

	var data snapshotData
	if err := msgpack.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	se.mu.Lock()
	defer se.mu.Unlock()

	se.collections = make(map[string]*domain.Collection, len(data.Collections))
	se.indexEngine = indexing.NewIndexEngine()
	se.cache.Purge()

	for name, fields := range data.IndexedFields {
		// A nil field set marks a collection that was never explicitly
		// initialized; leave it unconfigured so a later InitCollection
		// still applies.
		if fields == nil {
			continue
		}
		se.indexEngine.InitCollection(name, fields)
	}

	for name, entities := range data.Collections {
		collection := domain.NewCollection(name)
		for id, fields := range entities {
			entity := domain.Entity(fields)
			collection.Entities[id] = entity
			se.indexEngine.UpdateIndices(name, entity)
		}
		se.collections[name] = collection
	}
	return nil
}
