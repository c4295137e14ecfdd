// Package export writes rigged meshes: skinned glTF/GLB via qmuntal/gltf
// and a plain JSON rig description.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"mesh-autorig/internal/mesh"
	"mesh-autorig/internal/skeleton"
	"mesh-autorig/internal/skinning"
)

// MaxInfluences is the number of joints per vertex glTF carries in
// JOINTS_0/WEIGHTS_0.
const MaxInfluences = 4

// ErrMismatch reports weights that do not match the mesh or skeleton.
var ErrMismatch = errors.New("export: weights do not match mesh or skeleton")

// BuildDocument assembles a glTF document with one skinned mesh node and a
// joint node per skeleton joint. Joint nodes carry translations relative to
// their parent; the skin's inverse bind matrices undo the rest pose.
func BuildDocument(m *mesh.Mesh, sk *skeleton.Skeleton, w skinning.Weights) (*gltf.Document, error) {
	if w.N != len(m.Vertices) || w.J != sk.Len() {
		return nil, fmt.Errorf("%w: %dx%d weights, %d vertices, %d joints",
			ErrMismatch, w.N, w.J, len(m.Vertices), sk.Len())
	}
	if sk.Len() > 1<<16 {
		return nil, fmt.Errorf("%w: %d joints exceed 16-bit indices", ErrMismatch, sk.Len())
	}

	doc := gltf.NewDocument()

	positions := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
	}
	indices := make([]uint32, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		indices = append(indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	joints := make([][4]uint16, w.N)
	weights := make([][4]float32, w.N)
	for v := 0; v < w.N; v++ {
		for k, inf := range w.TopK(v, MaxInfluences) {
			joints[v][k] = uint16(inf.Joint)
			weights[v][k] = float32(inf.Weight)
		}
	}

	prim := &gltf.Primitive{
		Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION:  modeler.WritePosition(doc, positions),
			gltf.JOINTS_0:  modeler.WriteJoints(doc, joints),
			gltf.WEIGHTS_0: modeler.WriteWeights(doc, weights),
		},
	}
	name := m.Name
	if name == "" {
		name = "mesh"
	}
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})

	// Joint nodes follow the mesh node; node index = jointBase + joint index.
	jointBase := len(doc.Nodes) + 1
	ibm := make([][4][4]float32, sk.Len())
	for i, mtx := range sk.InverseBindMatrices() {
		ibm[i] = mtx.ColumnMajor32()
	}
	skin := &gltf.Skin{
		Name:                name + "_skin",
		Joints:              make([]int, sk.Len()),
		Skeleton:            gltf.Index(jointBase),
		InverseBindMatrices: gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, ibm)),
	}
	doc.Skins = append(doc.Skins, skin)

	meshNode := &gltf.Node{
		Name: name,
		Mesh: gltf.Index(len(doc.Meshes) - 1),
		Skin: gltf.Index(len(doc.Skins) - 1),
	}
	doc.Nodes = append(doc.Nodes, meshNode)

	locals := sk.LocalMatrices()
	for i, j := range sk.Joints {
		l := locals[i]
		node := &gltf.Node{
			Name:        j.Name,
			Translation: [3]float64{l[3], l[7], l[11]},
		}
		doc.Nodes = append(doc.Nodes, node)
		skin.Joints[i] = jointBase + i
	}
	for i, j := range sk.Joints {
		if j.Parent >= 0 {
			p := doc.Nodes[jointBase+j.Parent]
			p.Children = append(p.Children, jointBase+i)
		}
	}

	scene := doc.Scenes[0]
	scene.Nodes = append(scene.Nodes, jointBase-1)
	for i, j := range sk.Joints {
		if j.Parent < 0 {
			scene.Nodes = append(scene.Nodes, jointBase+i)
		}
	}
	return doc, nil
}

// WriteGLTF saves the rig to path, binary when the extension is .glb.
func WriteGLTF(path string, m *mesh.Mesh, sk *skeleton.Skeleton, w skinning.Weights) error {
	doc, err := BuildDocument(m, sk, w)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}
