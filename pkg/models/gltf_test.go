package models

import (
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/softclip/pkg/vbuf"
)

// writeGLB saves a document with one indexed triangle list and one
// unindexed strip, each carrying texcoords only on the first primitive.
func writeGLB(t *testing.T) string {
	t.Helper()

	doc := gltf.NewDocument()
	triPos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	triUV := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 0.25}})
	triIdx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	stripPos := modeler.WritePosition(doc, [][3]float32{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1}})

	doc.Materials = []*gltf.Material{{
		Name: "paint",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 0.5, 0, 1},
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "sample",
		Primitives: []*gltf.Primitive{
			{
				Indices:    gltf.Index(triIdx),
				Material:   gltf.Index(0),
				Attributes: gltf.PrimitiveAttributes{gltf.POSITION: triPos, gltf.TEXCOORD_0: triUV},
			},
			{
				Mode:       gltf.PrimitiveTriangleStrip,
				Attributes: gltf.PrimitiveAttributes{gltf.POSITION: stripPos},
			},
			{
				Mode:       gltf.PrimitiveLines,
				Attributes: gltf.PrimitiveAttributes{gltf.POSITION: stripPos},
			},
		},
	}}

	path := filepath.Join(t.TempDir(), "sample.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	assert.ErrorContains(t, err, "open gltf")
}

func TestGLTFLoaderDefaults(t *testing.T) {
	loader := NewGLTFLoader()
	require.NotNil(t, loader)
	assert.True(t, loader.CalculateNormals)
	assert.True(t, loader.LoadImages)
}

func TestLoadGLB(t *testing.T) {
	mesh, err := LoadGLB(writeGLB(t))
	require.NoError(t, err)

	assert.Equal(t, "sample.glb", mesh.Name)
	assert.Equal(t, 7, mesh.VertexCount())
	require.Len(t, mesh.Parts, 2)
	assert.Equal(t, 3, mesh.TriangleCount())

	tri, strip := mesh.Parts[0], mesh.Parts[1]
	assert.Equal(t, vbuf.List, tri.Topology)
	assert.Equal(t, []uint32{0, 1, 2}, tri.Indices)
	assert.Equal(t, 0, tri.Material)
	assert.True(t, tri.FrontCCW)

	assert.Equal(t, vbuf.Strip, strip.Topology)
	assert.Equal(t, []uint32{3, 4, 5, 6}, strip.Indices)
	assert.Equal(t, -1, strip.Material)

	// V is flipped and the strip vertices are zero-filled.
	uv := mesh.Buffers.Get(vbuf.TexCoord)
	require.Equal(t, 7, uv.Len())
	assert.Equal(t, []float32{0, 0.75}, uv.At(2))
	assert.Equal(t, []float32{0, 0}, uv.At(5))

	// Counter-clockwise fronts in the XY plane face +Z.
	nrm := mesh.Buffers.Get(vbuf.Normal)
	require.Equal(t, 7, nrm.Len())
	assert.InDelta(t, 1, nrm.At(0)[2], 1e-6)

	mat := mesh.GetMaterial(0)
	require.NotNil(t, mat)
	assert.Equal(t, "paint", mat.Name)
	assert.Equal(t, [4]float64{1, 0.5, 0, 1}, mat.BaseColor)
	assert.False(t, mat.HasTexture())

	assert.Equal(t, float64(1), mesh.BoundsMax.Z)
	assert.Equal(t, float64(0), mesh.BoundsMin.Z)
}

func TestLoadGLBWithoutNormals(t *testing.T) {
	loader := NewGLTFLoader()
	loader.CalculateNormals = false

	mesh, err := loader.Load(writeGLB(t))
	require.NoError(t, err)
	assert.False(t, mesh.Buffers.Present().Has(vbuf.Normal))
}

func TestLoadGLBWithTextureNone(t *testing.T) {
	mesh, img, err := LoadGLBWithTexture(writeGLB(t))
	require.NoError(t, err)
	assert.NotNil(t, mesh)
	assert.Nil(t, img)
}
