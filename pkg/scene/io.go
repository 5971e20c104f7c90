package scene

import (
	"fmt"
	"path/filepath"
	"strings"
)

// LoadAny loads a model file, choosing the reader by extension.
func LoadAny(path string) (*Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return LoadGLTF(path)
	case ".obj":
		return LoadOBJ(path)
	case ".stl":
		return LoadSTL(path)
	default:
		return nil, fmt.Errorf("unsupported format: %s (use .gltf, .glb, .obj, or .stl)", filepath.Ext(path))
	}
}

// SaveAny writes a scene, choosing the writer by extension.
func SaveAny(s *Scene, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return SaveGLTF(s, path)
	case ".obj":
		return SaveOBJ(s, path)
	case ".stl":
		return SaveSTL(s, path)
	default:
		return fmt.Errorf("unsupported format: %s (use .gltf, .glb, .obj, or .stl)", filepath.Ext(path))
	}
}
