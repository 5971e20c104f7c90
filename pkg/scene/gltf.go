package scene

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
)

// LoadGLTF loads a glTF or GLB file into a Scene. Node transforms are baked
// into vertex positions; each triangle primitive becomes one SubMesh.
// Non-triangle primitives are skipped.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return FromDocument(doc, filepath.Base(path))
}

// FromDocument flattens a glTF document into a Scene.
func FromDocument(doc *gltf.Document, name string) (*Scene, error) {
	sc := NewScene(name)

	if len(doc.Scenes) > 0 {
		sceneIdx := 0
		if doc.Scene != nil {
			sceneIdx = *doc.Scene
		}
		for _, nodeIdx := range doc.Scenes[sceneIdx].Nodes {
			if err := processNode(doc, nodeIdx, mgl64.Ident4(), sc); err != nil {
				return nil, err
			}
		}
	} else {
		// No scenes defined, process all root nodes
		for i := range doc.Nodes {
			isRoot := true
			for _, n := range doc.Nodes {
				for _, child := range n.Children {
					if child == i {
						isRoot = false
						break
					}
				}
				if !isRoot {
					break
				}
			}
			if isRoot {
				if err := processNode(doc, i, mgl64.Ident4(), sc); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, m := range sc.Meshes {
		m.CalculateBounds()
	}
	return sc, nil
}

// processNode recursively processes a node and its children, accumulating transforms.
func processNode(doc *gltf.Document, nodeIdx int, parentTransform mgl64.Mat4, sc *Scene) error {
	node := doc.Nodes[nodeIdx]

	localTransform := mgl64.Ident4()

	if node.Translation != [3]float64{0, 0, 0} {
		localTransform = localTransform.Mul4(mgl64.Translate3D(
			node.Translation[0],
			node.Translation[1],
			node.Translation[2],
		))
	}

	if node.Rotation != [4]float64{0, 0, 0, 1} {
		q := mgl64.Quat{
			W: node.Rotation[3],
			V: mgl64.Vec3{node.Rotation[0], node.Rotation[1], node.Rotation[2]},
		}
		localTransform = localTransform.Mul4(q.Mat4())
	}

	if node.Scale != [3]float64{1, 1, 1} && node.Scale != [3]float64{0, 0, 0} {
		localTransform = localTransform.Mul4(mgl64.Scale3D(
			node.Scale[0],
			node.Scale[1],
			node.Scale[2],
		))
	}

	if node.Matrix != [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1} && node.Matrix != [16]float64{} {
		localTransform = mgl64.Mat4(node.Matrix)
	}

	worldTransform := parentTransform.Mul4(localTransform)

	if node.Mesh != nil {
		gltfMesh := doc.Meshes[*node.Mesh]
		if err := processMesh(doc, gltfMesh, worldTransform, sc); err != nil {
			return err
		}
	}

	for _, childIdx := range node.Children {
		if err := processNode(doc, childIdx, worldTransform, sc); err != nil {
			return err
		}
	}
	return nil
}

// processMesh extracts each triangle primitive of a glTF mesh as a SubMesh,
// applying the given world transform.
func processMesh(doc *gltf.Document, m *gltf.Mesh, transform mgl64.Mat4, sc *Scene) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []mgl64.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []mgl64.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		sub := &SubMesh{Name: m.Name}

		normalMat := transform.Mat3()
		for i := range positions {
			p := transform.Mul4x1(positions[i].Vec4(1))
			sub.Positions = append(sub.Positions, p.Vec3())
			if i < len(normals) {
				n := normalMat.Mul3x1(normals[i])
				if n.Len() > 0 {
					n = n.Normalize()
				}
				sub.Normals = append(sub.Normals, n)
			}
			if i < len(uvs) {
				sub.UVs = append(sub.UVs, uvs[i])
			}
		}

		if prim.Indices != nil {
			indices, err := readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
			for i := 0; i+2 < len(indices); i += 3 {
				sub.Faces = append(sub.Faces, [3]int{indices[i], indices[i+1], indices[i+2]})
			}
		} else {
			// No indices, assume sequential triangles
			for i := 0; i+2 < len(positions); i += 3 {
				sub.Faces = append(sub.Faces, [3]int{i, i + 1, i + 2})
			}
		}

		sc.Meshes = append(sc.Meshes, sub)
	}

	return nil
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]mgl64.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	floats, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC3")
	}

	result := make([]mgl64.Vec3, len(floats))
	for i, f := range floats {
		result[i] = mgl64.Vec3{float64(f[0]), float64(f[1]), float64(f[2])}
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a glTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]mgl64.Vec2, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	floats, ok := data.([][2]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC2")
	}

	result := make([]mgl64.Vec2, len(floats))
	for i, f := range floats {
		result[i] = mgl64.Vec2{float64(f[0]), float64(f[1])}
	}
	return result, nil
}

// readIndices reads index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	switch v := data.(type) {
	case []uint8:
		result := make([]int, len(v))
		for i, x := range v {
			result[i] = int(x)
		}
		return result, nil
	case []uint16:
		result := make([]int, len(v))
		for i, x := range v {
			result[i] = int(x)
		}
		return result, nil
	case []uint32:
		result := make([]int, len(v))
		for i, x := range v {
			result[i] = int(x)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unexpected index type: %T", data)
	}
}

// readAccessorData reads raw data from a glTF accessor.
func readAccessorData(doc *gltf.Document, accessor *gltf.Accessor) (any, error) {
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]

	bufData := buffer.Data
	if len(bufData) == 0 {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	count := accessor.Count

	switch accessor.Type {
	case gltf.AccessorVec3:
		if stride == 0 {
			stride = 12 // 3 floats * 4 bytes
		}
		result := make([][3]float32, count)
		for i := 0; i < count; i++ {
			offset := start + i*stride
			for j := 0; j < 3; j++ {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorVec2:
		if stride == 0 {
			stride = 8 // 2 floats * 4 bytes
		}
		result := make([][2]float32, count)
		for i := 0; i < count; i++ {
			offset := start + i*stride
			for j := 0; j < 2; j++ {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorScalar:
		if stride == 0 {
			switch accessor.ComponentType {
			case gltf.ComponentUbyte:
				stride = 1
			case gltf.ComponentUshort:
				stride = 2
			case gltf.ComponentUint:
				stride = 4
			}
		}

		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			result := make([]uint8, count)
			for i := 0; i < count; i++ {
				result[i] = bufData[start+i*stride]
			}
			return result, nil
		case gltf.ComponentUshort:
			result := make([]uint16, count)
			for i := 0; i < count; i++ {
				offset := start + i*stride
				result[i] = uint16(bufData[offset]) | uint16(bufData[offset+1])<<8
			}
			return result, nil
		case gltf.ComponentUint:
			result := make([]uint32, count)
			for i := 0; i < count; i++ {
				offset := start + i*stride
				result[i] = uint32(bufData[offset]) |
					uint32(bufData[offset+1])<<8 |
					uint32(bufData[offset+2])<<16 |
					uint32(bufData[offset+3])<<24
			}
			return result, nil
		}
	}

	return nil, fmt.Errorf("unsupported accessor type: %v / %v", accessor.Type, accessor.ComponentType)
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
