package protogen

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ProtoExtension is the schema file extension protoc consumes
const ProtoExtension = ".proto"

// ScanProtoFiles walks the source directory recursively and returns every
// .proto file found, sorted by path. Sorted order keeps downstream cache
// fingerprints reproducible. A missing source directory yields an empty
// set, not an error: the schema file set has no identity beyond the
// current contents of the directory.
func ScanProtoFiles(sourceDir string) ([]string, error) {
	if _, err := os.Stat(sourceDir); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ProtoExtension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
