package config

import "path/filepath"

const (
	// DefaultProtocPath is a bare protoc lookup on the execution PATH
	DefaultProtocPath = "protoc"

	// DefaultProtobufVersion selects the default runtime library version
	DefaultProtobufVersion = "2.4.1"

	// DefaultCacheNamespace keys the generation cache record
	DefaultCacheNamespace = "protoc"

	// DefaultLibraryGroupID and DefaultLibraryArtifactID identify the
	// protobuf runtime library added automatically when the built-in
	// java target is active
	DefaultLibraryGroupID    = "com.google.protobuf"
	DefaultLibraryArtifactID = "protobuf-java"
)

// defaultSourceDir is a protobuf subdirectory of the standard source root
func defaultSourceDir() string {
	return filepath.Join("src", "main", "protobuf")
}

// defaultTargetDir is the build output root
func defaultTargetDir() string {
	return "target"
}
