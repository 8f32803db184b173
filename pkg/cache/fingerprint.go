package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
)

// Stamp stats every input file and returns its modification-time
// fingerprint keyed by path
func Stamp(paths []string) (map[string]FileStamp, error) {
	stamps := make(map[string]FileStamp, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input file: %w", err)
		}
		stamps[path] = FileStamp{
			ModTimeNanos: info.ModTime().UnixNano(),
			Size:         info.Size(),
		}
	}
	return stamps, nil
}

// Fingerprint hashes an input stamp set into a stable hex digest.
//
// Paths are hashed in sorted order: path \0 mtime \0 size \0. Identical
// input sets always yield identical fingerprints regardless of map
// iteration order.
func Fingerprint(inputs map[string]FileStamp) string {
	paths := make([]string, 0, len(inputs))
	for path := range inputs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	hasher := sha256.New()
	var buf [8]byte
	for _, path := range paths {
		stamp := inputs[path]
		hasher.Write([]byte(path))
		hasher.Write([]byte{0})
		binary.BigEndian.PutUint64(buf[:], uint64(stamp.ModTimeNanos))
		hasher.Write(buf[:])
		hasher.Write([]byte{0})
		binary.BigEndian.PutUint64(buf[:], uint64(stamp.Size))
		hasher.Write(buf[:])
		hasher.Write([]byte{0})
	}

	return hex.EncodeToString(hasher.Sum(nil))
}

// Fresh reports whether a record still matches the current input set:
// the file sets are identical, no fingerprint changed, and every
// recorded output file still exists on disk
func Fresh(rec *Record, current map[string]FileStamp) bool {
	if rec == nil {
		return false
	}
	if len(rec.Inputs) != len(current) {
		return false
	}
	if rec.Fingerprint != Fingerprint(current) {
		return false
	}
	for _, output := range rec.Outputs {
		if _, err := os.Stat(output); err != nil {
			return false
		}
	}
	return true
}
