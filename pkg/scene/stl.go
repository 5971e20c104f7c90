package scene

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// LoadSTL loads an STL (stereolithography) file in ASCII or binary format
// into a single-submesh scene. Facet vertices sharing a position are
// deduplicated; the facet normal is assigned per vertex.
func LoadSTL(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL file: %w", err)
	}
	return ReadSTL(data, path)
}

// ReadSTL parses STL from a byte slice, detecting the format.
func ReadSTL(data []byte, name string) (*Scene, error) {
	var sub *SubMesh
	var err error
	if isBinarySTL(data) {
		sub, err = readBinarySTL(data, name)
	} else {
		sub, err = readASCIISTL(data, name)
	}
	if err != nil {
		return nil, err
	}
	sub.CalculateBounds()

	sc := NewScene(name)
	sc.Meshes = append(sc.Meshes, sub)
	return sc, nil
}

// isBinarySTL detects if the data is binary STL format.
// Binary STL starts with 80-byte header, then 4-byte triangle count.
// ASCII STL starts with "solid".
func isBinarySTL(data []byte) bool {
	if len(data) < 84 {
		return false
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("solid")) {
		// Could still be binary if "solid" appears in the header; trust the
		// triangle count only when it matches the file size exactly.
		triCount := binary.LittleEndian.Uint32(data[80:84])
		expectedSize := 84 + triCount*50
		return uint32(len(data)) == expectedSize
	}

	return true
}

func readBinarySTL(data []byte, name string) (*SubMesh, error) {
	if len(data) < 84 {
		return nil, fmt.Errorf("binary STL too short: %d bytes", len(data))
	}

	// Skip 80-byte header
	triCount := binary.LittleEndian.Uint32(data[80:84])

	expectedSize := 84 + triCount*50
	if uint32(len(data)) < expectedSize {
		return nil, fmt.Errorf("binary STL truncated: expected %d bytes, got %d", expectedSize, len(data))
	}

	sub := &SubMesh{Name: name}
	vertexMap := make(map[mgl64.Vec3]int)

	offset := 84
	for i := uint32(0); i < triCount; i++ {
		normal := mgl64.Vec3{
			float64(readFloat32(data[offset:])),
			float64(readFloat32(data[offset+4:])),
			float64(readFloat32(data[offset+8:])),
		}
		offset += 12

		var faceVerts [3]int
		for v := 0; v < 3; v++ {
			pos := mgl64.Vec3{
				float64(readFloat32(data[offset:])),
				float64(readFloat32(data[offset+4:])),
				float64(readFloat32(data[offset+8:])),
			}
			offset += 12

			faceVerts[v] = internSTLVertex(sub, vertexMap, pos, normal)
		}

		// Skip 2-byte attribute byte count
		offset += 2

		sub.Faces = append(sub.Faces, faceVerts)
	}

	return sub, nil
}

func readASCIISTL(data []byte, name string) (*SubMesh, error) {
	sub := &SubMesh{Name: name}
	vertexMap := make(map[mgl64.Vec3]int)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0

	var currentNormal mgl64.Vec3
	var faceVerts []int
	inFacet := false
	inLoop := false

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if len(line) == 0 {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "solid":
			if len(fields) > 1 {
				sub.Name = fields[1]
			}

		case "facet":
			if len(fields) >= 5 && strings.ToLower(fields[1]) == "normal" {
				n, err := parseVec3(fields[2:5])
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid facet normal: %w", lineNum, err)
				}
				if n.Len() > 0 {
					n = n.Normalize()
				}
				currentNormal = n
			}
			inFacet = true
			faceVerts = nil

		case "outer":
			if len(fields) >= 2 && strings.ToLower(fields[1]) == "loop" {
				inLoop = true
			}

		case "vertex":
			if !inFacet || !inLoop {
				return nil, fmt.Errorf("line %d: vertex outside facet/loop", lineNum)
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs x y z", lineNum)
			}
			pos, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			faceVerts = append(faceVerts, internSTLVertex(sub, vertexMap, pos, currentNormal))

		case "endloop":
			inLoop = false

		case "endfacet":
			if len(faceVerts) >= 3 {
				sub.Faces = append(sub.Faces, [3]int{faceVerts[0], faceVerts[1], faceVerts[2]})
			}
			inFacet = false
			faceVerts = nil

		case "endsolid":
			// Done

		default:
			// Ignore unknown
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}

	return sub, nil
}

// internSTLVertex deduplicates a facet vertex by exact position.
func internSTLVertex(sub *SubMesh, vertexMap map[mgl64.Vec3]int, pos, normal mgl64.Vec3) int {
	if idx, exists := vertexMap[pos]; exists {
		return idx
	}
	idx := len(sub.Positions)
	sub.Positions = append(sub.Positions, pos)
	sub.Normals = append(sub.Normals, normal)
	vertexMap[pos] = idx
	return idx
}

// SaveSTL writes the scene as binary STL. STL has no concept of sub-meshes,
// normals per vertex, or UVs: all triangles are flattened into one solid
// with recomputed facet normals.
func SaveSTL(s *Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create STL file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	var header [80]byte
	copy(header[:], "MAC-Simplifier binary STL")
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write STL header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(s.TriangleCount())); err != nil {
		return fmt.Errorf("write STL triangle count: %w", err)
	}

	for _, m := range s.Meshes {
		for _, face := range m.Faces {
			v0 := m.Positions[face[0]]
			v1 := m.Positions[face[1]]
			v2 := m.Positions[face[2]]
			n := v1.Sub(v0).Cross(v2.Sub(v0))
			if n.Len() > 0 {
				n = n.Normalize()
			}

			var rec [50]byte
			putVec3f(rec[0:], n)
			putVec3f(rec[12:], v0)
			putVec3f(rec[24:], v1)
			putVec3f(rec[36:], v2)
			if _, err := w.Write(rec[:]); err != nil {
				return fmt.Errorf("write STL facet: %w", err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("error writing STL: %w", err)
	}
	return nil
}

func putVec3f(b []byte, v mgl64.Vec3) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(v.X())))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y())))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z())))
}
