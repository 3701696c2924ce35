package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/softclip/pkg/vbuf"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals when the file has none.
	CalculateNormals bool
	// LoadImages decodes base color images into the mesh materials.
	LoadImages bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		LoadImages:       true,
	}
}

// LoadGLB loads a glTF or binary glTF (.glb) file with the default options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

var primitiveTopology = map[gltf.PrimitiveMode]vbuf.Topology{
	gltf.PrimitiveTriangles:     vbuf.List,
	gltf.PrimitiveTriangleStrip: vbuf.Strip,
	gltf.PrimitiveTriangleFan:   vbuf.Fan,
}

// meshBuilder accumulates primitives into shared packed buffers. Attributes
// that only some primitives carry are zero-filled for the others.
type meshBuilder struct {
	pos, normals, uvs, colors []float32
	vertices                  int
}

func pad(data []float32, comps, verts int) []float32 {
	for len(data) < verts*comps {
		data = append(data, 0)
	}
	return data
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	var b meshBuilder
	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh, &b); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	mesh.Buffers.Bind(vbuf.Position, vbuf.Packed(b.pos, 3))
	if len(b.normals) > 0 {
		mesh.Buffers.Bind(vbuf.Normal, vbuf.Packed(pad(b.normals, 3, b.vertices), 3))
	}
	if len(b.uvs) > 0 {
		mesh.Buffers.Bind(vbuf.TexCoord, vbuf.Packed(pad(b.uvs, 2, b.vertices), 2))
	}
	if len(b.colors) > 0 {
		mesh.Buffers.Bind(vbuf.Color, vbuf.Packed(pad(b.colors, 4, b.vertices), 4))
	}

	if l.CalculateNormals && len(b.normals) == 0 {
		mesh.CalculateSmoothNormals()
	}

	mesh.Materials, err = l.loadMaterials(doc, filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// processMesh appends the triangle primitives of m to the builder.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh, b *meshBuilder) error {
	for _, prim := range m.Primitives {
		topo, ok := primitiveTopology[prim.Mode]
		if !ok {
			// Skip lines and points
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		base := b.vertices
		for _, p := range positions {
			b.pos = append(b.pos, p[0], p[1], p[2])
		}

		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
			b.normals = pad(b.normals, 3, base)
			for _, n := range normals {
				b.normals = append(b.normals, n[0], n[1], n[2])
			}
		}

		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
			b.uvs = pad(b.uvs, 2, base)
			for _, uv := range uvs {
				// glTF puts V=0 at the top of the image.
				b.uvs = append(b.uvs, uv[0], 1-uv[1])
			}
		}

		if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
			colors, err := modeler.ReadColor(doc, doc.Accessors[idx], nil)
			if err != nil {
				return fmt.Errorf("read colors: %w", err)
			}
			b.colors = pad(b.colors, 4, base)
			for _, c := range colors {
				b.colors = append(b.colors,
					float32(c[0])/255, float32(c[1])/255, float32(c[2])/255, float32(c[3])/255)
			}
		}

		b.vertices += len(positions)

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
			for i := range indices {
				indices[i] += uint32(base)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(base + i)
			}
		}

		part := Part{
			Indices:  indices,
			Topology: topo,
			Material: -1,
			FrontCCW: true,
		}
		if prim.Material != nil {
			part.Material = *prim.Material
		}
		mesh.Parts = append(mesh.Parts, part)
	}

	return nil
}

// loadMaterials converts the document materials, decoding base color images
// when enabled.
func (l *GLTFLoader) loadMaterials(doc *gltf.Document, dir string) ([]Material, error) {
	images := make(map[int]image.Image)
	mats := make([]Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := Material{Name: gm.Name, BaseColor: [4]float64{1, 1, 1, 1}}
		pbr := gm.PBRMetallicRoughness
		if pbr != nil && pbr.BaseColorFactor != nil {
			mat.BaseColor = *pbr.BaseColorFactor
		}
		if l.LoadImages && pbr != nil && pbr.BaseColorTexture != nil {
			src := textureSource(doc, pbr.BaseColorTexture.Index)
			if src >= 0 {
				img, ok := images[src]
				if !ok {
					var err error
					img, err = decodeImage(doc, src, dir)
					if err != nil {
						return nil, fmt.Errorf("load material %q: %w", gm.Name, err)
					}
					images[src] = img
				}
				mat.BaseMap = img
			}
		}
		mats[i] = mat
	}
	return mats, nil
}

func textureSource(doc *gltf.Document, tex int) int {
	if tex < 0 || tex >= len(doc.Textures) || doc.Textures[tex].Source == nil {
		return -1
	}
	return *doc.Textures[tex].Source
}

// imageData returns the encoded bytes of an image stored in a buffer view.
func imageData(doc *gltf.Document, img *gltf.Image) []byte {
	bv := doc.BufferViews[*img.BufferView]
	buf := doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil
	}
	return buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
}

// decodeImage decodes image i from its buffer view or from a file next to the
// document.
func decodeImage(doc *gltf.Document, i int, dir string) (image.Image, error) {
	img := doc.Images[i]
	switch {
	case img.BufferView != nil:
		data := imageData(doc, img)
		if data == nil {
			return nil, fmt.Errorf("decode image %d: buffer has no data", i)
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode image %d: %w", i, err)
		}
		return decoded, nil
	case img.URI != "":
		decoded, err := imgio.Open(filepath.Join(dir, img.URI))
		if err != nil {
			return nil, fmt.Errorf("open image %q: %w", img.URI, err)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("decode image %d: no source", i)
}

// LoadGLBWithTexture loads a glTF file and returns the mesh plus the first
// embedded or referenced image. The image is nil when the file has none.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	mesh, err := LoadGLB(path)
	if err != nil {
		return nil, nil, err
	}
	for i := range mesh.Materials {
		if mesh.Materials[i].HasTexture() {
			return mesh, mesh.Materials[i].BaseMap, nil
		}
	}
	return mesh, nil, nil
}
