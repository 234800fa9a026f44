package reader

import (
	"fmt"
	"time"

	"github.com/ms-elk/rtcamp11/asset"
	"github.com/ms-elk/rtcamp11/asset/gltf"
	"github.com/ms-elk/rtcamp11/asset/scene"
	"github.com/ms-elk/rtcamp11/asset/texture"
	"github.com/ms-elk/rtcamp11/log"
	"github.com/ms-elk/rtcamp11/types"
)

type gltfSceneReader struct {
	logger log.Logger

	doc *gltf.Document
	res *asset.Resource

	rawScene *scene.Scene

	// Index of the material used by primitives without one, or -1.
	defaultMaterial int
}

func newGltfReader() *gltfSceneReader {
	return &gltfSceneReader{
		logger:          log.New("gltf scene reader"),
		rawScene:        scene.NewScene(),
		defaultMaterial: -1,
	}
}

// Read scene definition.
func (r *gltfSceneReader) Read(res *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, res.Path())
	start := time.Now()

	doc, err := gltf.Load(res)
	if err != nil {
		return nil, err
	}
	r.doc, r.res = doc, res

	steps := []func() error{
		r.readMaterials,
		r.readMeshes,
		r.readNodes,
		r.readAnimations,
	}
	for _, step := range steps {
		if err = step(); err != nil {
			return nil, err
		}
	}

	r.logger.Noticef(
		"parsed scene in %d ms: %d meshes, %d nodes, %d materials, %d animations",
		time.Since(start).Nanoseconds()/1e6,
		len(r.rawScene.Meshes), len(r.rawScene.Nodes), len(r.rawScene.Materials), len(r.rawScene.Animations),
	)
	return r.rawScene, nil
}

func (r *gltfSceneReader) readMaterials() error {
	textures := make(map[int]*texture.Texture)
	for index, gm := range r.doc.Materials {
		mat := &scene.Material{
			Name:      gm.Name,
			BaseColor: types.XYZ(1, 1, 1),
		}

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			if f := pbr.BaseColorFactor; f != nil {
				mat.BaseColor = types.XYZ(f[0], f[1], f[2])
			}
			if info := pbr.BaseColorTexture; info != nil {
				tex, err := r.loadTexture(info.Index, textures)
				if err != nil {
					return fmt.Errorf("gltf: material %d: %w", index, err)
				}
				mat.BaseColorTex = tex
			}
		}

		if f := gm.EmissiveFactor; f != nil {
			mat.Emissive = types.XYZ(f[0], f[1], f[2])
			if ext := gm.Extensions; ext != nil && ext.EmissiveStrength != nil && ext.EmissiveStrength.EmissiveStrength != nil {
				mat.Emissive = mat.Emissive.Mul(*ext.EmissiveStrength.EmissiveStrength)
			}
		}

		r.rawScene.Materials = append(r.rawScene.Materials, mat)
	}
	return nil
}

// Decode the image referenced by a texture. Base color textures are stored
// in sRGB space.
func (r *gltfSceneReader) loadTexture(index int, cache map[int]*texture.Texture) (*texture.Texture, error) {
	if tex, exists := cache[index]; exists {
		return tex, nil
	}
	if index < 0 || index >= len(r.doc.Textures) || r.doc.Textures[index].Source == nil {
		return nil, fmt.Errorf("invalid texture %d", index)
	}

	data, err := r.doc.ImageData(*r.doc.Textures[index].Source, r.res)
	if err != nil {
		return nil, err
	}
	tex, err := texture.Decode(data, true)
	if err != nil {
		return nil, fmt.Errorf("texture %d: %w", index, err)
	}

	r.logger.Infof("loaded texture %d (%dx%d %s)", index, tex.Width, tex.Height, tex.Format)
	cache[index] = tex
	return tex, nil
}

func (r *gltfSceneReader) materialIndex(prim gltf.Primitive) int {
	if prim.Material != nil {
		return *prim.Material
	}
	if r.defaultMaterial < 0 {
		r.rawScene.Materials = append(r.rawScene.Materials, &scene.Material{
			Name:      "default",
			BaseColor: types.XYZ(0.8, 0.8, 0.8),
		})
		r.defaultMaterial = len(r.rawScene.Materials) - 1
	}
	return r.defaultMaterial
}

func (r *gltfSceneReader) readMeshes() error {
	for meshIndex, gm := range r.doc.Meshes {
		mesh := scene.NewMesh(gm.Name)
		for primIndex, prim := range gm.Primitives {
			if prim.Mode != nil && *prim.Mode != gltf.TRIANGLES {
				r.logger.Warningf("mesh %d: skipping primitive %d with unsupported mode %d", meshIndex, primIndex, *prim.Mode)
				continue
			}

			prims, err := r.readPrimitive(prim)
			if err != nil {
				return fmt.Errorf("gltf: mesh %d primitive %d: %w", meshIndex, primIndex, err)
			}
			mesh.Primitives = append(mesh.Primitives, prims...)
		}
		r.rawScene.Meshes = append(r.rawScene.Meshes, mesh)
	}
	return nil
}

func (r *gltfSceneReader) readPrimitive(prim gltf.Primitive) ([]*scene.Primitive, error) {
	positions, err := r.doc.ReadVec3(prim.Attributes[gltf.POSITION])
	if err != nil {
		return nil, err
	}

	var normals []types.Vec3
	if index, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = r.doc.ReadVec3(index); err != nil {
			return nil, err
		}
	}

	var uvs []types.Vec2
	if index, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = r.doc.ReadVec2(index); err != nil {
			return nil, err
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = r.doc.ReadIndices(*prim.Indices); err != nil {
			return nil, err
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}

	matIndex := r.materialIndex(prim)
	out := make([]*scene.Primitive, 0, len(indices)/3)
	for tri := 0; tri < len(indices); tri += 3 {
		p := &scene.Primitive{MaterialIndex: matIndex, HasNormals: normals != nil}
		for k := 0; k < 3; k++ {
			vi := int(indices[tri+k])
			if vi >= len(positions) {
				return nil, fmt.Errorf("vertex index %d out of range", vi)
			}
			p.Vertices[k] = positions[vi]
			if normals != nil && vi < len(normals) {
				p.Normals[k] = normals[vi]
			}
			if uvs != nil && vi < len(uvs) {
				p.UVs[k] = uvs[vi]
			}
		}

		// Generate flat normals when the mesh does not provide any
		if normals == nil {
			n := p.Vertices[1].Sub(p.Vertices[0]).Cross(p.Vertices[2].Sub(p.Vertices[0])).Normalize()
			p.Normals = [3]types.Vec3{n, n, n}
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *gltfSceneReader) readNodes() error {
	hasParent := make([]bool, len(r.doc.Nodes))
	for _, gn := range r.doc.Nodes {
		node := scene.NewNode(gn.Name)
		if gn.Mesh != nil {
			node.Mesh = *gn.Mesh
		}
		node.Children = append(node.Children, gn.Children...)
		for _, child := range gn.Children {
			hasParent[child] = true
		}

		if gn.Matrix != nil {
			m := types.Mat4(*gn.Matrix)
			node.Matrix = &m
		}
		if t := gn.Translation; t != nil {
			node.Translation = types.XYZ(t[0], t[1], t[2])
		}
		if q := gn.Rotation; q != nil {
			node.Rotation = types.QuatXYZW(types.XYZW(q[0], q[1], q[2], q[3])).Normalize()
		}
		if s := gn.Scale; s != nil {
			node.Scale = types.XYZ(s[0], s[1], s[2])
		}
		r.rawScene.Nodes = append(r.rawScene.Nodes, node)
	}

	// Use the default scene if present; otherwise instantiate every root node
	switch {
	case len(r.doc.Scenes) > 0:
		sceneIndex := 0
		if r.doc.Scene != nil {
			sceneIndex = *r.doc.Scene
		}
		r.rawScene.Roots = append(r.rawScene.Roots, r.doc.Scenes[sceneIndex].Nodes...)
	default:
		for index := range r.rawScene.Nodes {
			if !hasParent[index] {
				r.rawScene.Roots = append(r.rawScene.Roots, index)
			}
		}
	}

	return checkAcyclic(r.rawScene)
}

// Reject node hierarchies containing cycles.
func checkAcyclic(sc *scene.Scene) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]uint8, len(sc.Nodes))
	var visit func(int) error
	visit = func(index int) error {
		switch state[index] {
		case visiting:
			return fmt.Errorf("gltf: node %d is part of a cycle", index)
		case done:
			return nil
		}
		state[index] = visiting
		for _, child := range sc.Nodes[index].Children {
			if err := visit(child); err != nil {
				return err
			}
		}
		state[index] = done
		return nil
	}
	for index := range sc.Nodes {
		if err := visit(index); err != nil {
			return err
		}
	}
	return nil
}

func (r *gltfSceneReader) readAnimations() error {
	for animIndex, ga := range r.doc.Animations {
		anim := &scene.Animation{Name: ga.Name}
		for _, gc := range ga.Channels {
			if gc.Target.Node == nil {
				continue
			}

			var path scene.Path
			switch gc.Target.Path {
			case gltf.Ptranslation:
				path = scene.Translation
			case gltf.Protation:
				path = scene.Rotation
			case gltf.Pscale:
				path = scene.Scale
			default:
				r.logger.Warningf("animation %d: skipping unsupported target path %q", animIndex, gc.Target.Path)
				continue
			}

			sampler, err := r.readSampler(ga.Samplers[gc.Sampler])
			if err != nil {
				return fmt.Errorf("gltf: animation %d: %w", animIndex, err)
			}

			anim.Channels = append(anim.Channels, scene.Channel{
				Node:    *gc.Target.Node,
				Path:    path,
				Sampler: sampler,
			})
		}
		r.rawScene.Animations = append(r.rawScene.Animations, anim)
	}
	return nil
}

func (r *gltfSceneReader) readSampler(gs gltf.ASampler) (scene.Sampler, error) {
	var sampler scene.Sampler
	switch gs.Interpolation {
	case "", gltf.ILINEAR:
		sampler.Interpolation = scene.Linear
	case gltf.STEP:
		sampler.Interpolation = scene.Step
	case gltf.CUBICSPLINE:
		sampler.Interpolation = scene.CubicSpline
	default:
		return sampler, fmt.Errorf("unsupported interpolation %q", gs.Interpolation)
	}

	times, err := r.doc.ReadScalars(gs.Input)
	if err != nil {
		return sampler, err
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return sampler, fmt.Errorf("keyframe times are not increasing")
		}
	}

	values, comps, err := r.doc.ReadAccessor(gs.Output)
	if err != nil {
		return sampler, err
	}
	if comps != 3 && comps != 4 {
		return sampler, fmt.Errorf("unsupported keyframe value type with %d components", comps)
	}

	perKey := 1
	if sampler.Interpolation == scene.CubicSpline {
		perKey = 3
	}
	if len(values)/comps != len(times)*perKey {
		return sampler, fmt.Errorf("expected %d keyframe values; got %d", len(times)*perKey, len(values)/comps)
	}

	sampler.Times = times
	sampler.Values = make([]types.Vec4, len(values)/comps)
	for i := range sampler.Values {
		for c := 0; c < comps; c++ {
			sampler.Values[i][c] = float32(values[i*comps+c])
		}
	}
	return sampler, nil
}
