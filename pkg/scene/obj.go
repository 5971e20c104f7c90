package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// LoadOBJ loads a Wavefront OBJ file into a single-submesh scene. Polygon
// faces are fan-triangulated; vertices are deduplicated per (position, uv,
// normal) index triple.
func LoadOBJ(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer f.Close()

	return ReadOBJ(f, path)
}

// ReadOBJ parses an OBJ from a reader.
func ReadOBJ(r io.Reader, name string) (*Scene, error) {
	sub := &SubMesh{Name: name}

	// Temporary storage for OBJ data (1-indexed in OBJ format)
	var positions []mgl64.Vec3
	var normals []mgl64.Vec3
	var uvs []mgl64.Vec2
	hasNormals := false
	hasUVs := false

	// Map to deduplicate vertices (OBJ can have different indices for pos/uv/normal)
	type vertexKey struct {
		pos, uv, normal int
	}
	vertexMap := make(map[vertexKey]int)

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v": // Vertex position
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: invalid vertex (need x y z)", lineNum)
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			positions = append(positions, v)

		case "vt": // Texture coordinate
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: invalid texture coord (need u v)", lineNum)
			}
			u, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid u coordinate: %w", lineNum, err)
			}
			v, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid v coordinate: %w", lineNum, err)
			}
			uvs = append(uvs, mgl64.Vec2{u, v})

		case "vn": // Vertex normal
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: invalid normal (need x y z)", lineNum)
			}
			n, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			if n.Len() > 0 {
				n = n.Normalize()
			}
			normals = append(normals, n)

		case "f": // Face
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNum)
			}

			var faceVerts []int
			for i := 1; i < len(fields); i++ {
				posIdx, uvIdx, normalIdx, err := parseFaceVertex(fields[i])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}

				// Convert to 0-indexed, handle negative indices
				posIdx = resolveIndex(posIdx, len(positions))
				uvIdx = resolveIndex(uvIdx, len(uvs))
				normalIdx = resolveIndex(normalIdx, len(normals))

				if posIdx < 0 || posIdx >= len(positions) {
					return nil, fmt.Errorf("line %d: position index %d out of range", lineNum, posIdx+1)
				}

				// Create or reuse vertex
				key := vertexKey{posIdx, uvIdx, normalIdx}
				vertIdx, exists := vertexMap[key]
				if !exists {
					vertIdx = len(sub.Positions)
					sub.Positions = append(sub.Positions, positions[posIdx])
					if uvIdx >= 0 && uvIdx < len(uvs) {
						sub.UVs = append(sub.UVs, uvs[uvIdx])
						hasUVs = true
					} else {
						sub.UVs = append(sub.UVs, mgl64.Vec2{})
					}
					if normalIdx >= 0 && normalIdx < len(normals) {
						sub.Normals = append(sub.Normals, normals[normalIdx])
						hasNormals = true
					} else {
						sub.Normals = append(sub.Normals, mgl64.Vec3{})
					}
					vertexMap[key] = vertIdx
				}
				faceVerts = append(faceVerts, vertIdx)
			}

			// Triangulate (fan triangulation for convex polygons)
			for i := 1; i < len(faceVerts)-1; i++ {
				sub.Faces = append(sub.Faces, [3]int{faceVerts[0], faceVerts[i], faceVerts[i+1]})
			}

		case "o", "g": // Object/group name (use as mesh name)
			if len(fields) > 1 {
				sub.Name = fields[1]
			}

		case "mtllib", "usemtl", "s": // Materials and smoothing groups - ignored

		default:
			// Ignore unknown directives
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading OBJ: %w", err)
	}

	if !hasNormals {
		sub.Normals = nil
	}
	if !hasUVs {
		sub.UVs = nil
	}
	sub.CalculateBounds()

	sc := NewScene(name)
	sc.Meshes = append(sc.Meshes, sub)
	return sc, nil
}

// SaveOBJ writes the scene as a Wavefront OBJ file, one object per sub-mesh.
func SaveOBJ(s *Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create OBJ file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	base := 1 // OBJ indices are 1-based

	for _, m := range s.Meshes {
		name := m.Name
		if name == "" {
			name = "mesh"
		}
		fmt.Fprintf(w, "o %s\n", name)
		for _, p := range m.Positions {
			fmt.Fprintf(w, "v %g %g %g\n", p.X(), p.Y(), p.Z())
		}
		hasUV, hasN := m.HasUV(), m.HasNormals()
		if hasUV {
			for _, uv := range m.UVs {
				fmt.Fprintf(w, "vt %g %g\n", uv.X(), uv.Y())
			}
		}
		if hasN {
			for _, n := range m.Normals {
				fmt.Fprintf(w, "vn %g %g %g\n", n.X(), n.Y(), n.Z())
			}
		}
		for _, face := range m.Faces {
			fmt.Fprint(w, "f")
			for _, v := range face {
				i := base + v
				switch {
				case hasUV && hasN:
					fmt.Fprintf(w, " %d/%d/%d", i, i, i)
				case hasUV:
					fmt.Fprintf(w, " %d/%d", i, i)
				case hasN:
					fmt.Fprintf(w, " %d//%d", i, i)
				default:
					fmt.Fprintf(w, " %d", i)
				}
			}
			fmt.Fprintln(w)
		}
		base += len(m.Positions)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("error writing OBJ: %w", err)
	}
	return nil
}

func parseVec3(fields []string) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("invalid coordinate %q: %w", fields[i], err)
		}
		v[i] = f
	}
	return v, nil
}

// parseFaceVertex parses a face vertex in format: v, v/vt, v/vt/vn, or v//vn
// Returns 1-indexed values (0 means not specified)
func parseFaceVertex(s string) (pos, uv, normal int, err error) {
	parts := strings.Split(s, "/")

	// Position (required)
	pos, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid vertex index: %s", parts[0])
	}

	// UV (optional)
	if len(parts) > 1 && parts[1] != "" {
		uv, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid texture index: %s", parts[1])
		}
	}

	// Normal (optional)
	if len(parts) > 2 && parts[2] != "" {
		normal, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid normal index: %s", parts[2])
		}
	}

	return pos, uv, normal, nil
}

// resolveIndex converts OBJ 1-indexed (or negative) index to 0-indexed.
// Returns -1 if index was 0 (not specified).
func resolveIndex(idx, count int) int {
	if idx == 0 {
		return -1
	}
	if idx < 0 {
		return count + idx // Negative indices count from end
	}
	return idx - 1 // Convert 1-indexed to 0-indexed
}
