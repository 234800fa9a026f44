package reader

import (
	"fmt"
	"strings"

	"github.com/ms-elk/rtcamp11/asset"
	"github.com/ms-elk/rtcamp11/asset/scene"
)

// The supported scene file formats.
type FileType uint8

const (
	// glTF 2.0 (.gltf with external or embedded buffers and .glb).
	Gltf FileType = iota

	// Static Wavefront OBJ geometry.
	Obj
)

func (ft FileType) String() string {
	switch ft {
	case Gltf:
		return "gltf"
	case Obj:
		return "obj"
	}
	return "unknown"
}

// Detect the file type from the extension of a scene path.
func FileTypeFromPath(path string) (FileType, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gltf"), strings.HasSuffix(lower, ".glb"):
		return Gltf, nil
	case strings.HasSuffix(lower, ".obj"):
		return Obj, nil
	}
	return 0, fmt.Errorf("reader: unsupported scene file extension for %q", path)
}

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from a local file or http(s) URL.
func ReadScene(path string, fileType FileType) (*scene.Scene, error) {
	var reader Reader
	switch fileType {
	case Gltf:
		reader = newGltfReader()
	case Obj:
		reader = newWavefrontReader()
	default:
		return nil, fmt.Errorf("reader: unsupported file type %d", fileType)
	}

	res, err := asset.NewResource(path, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}
