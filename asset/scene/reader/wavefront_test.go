package reader

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ms-elk/rtcamp11/asset"
	"github.com/ms-elk/rtcamp11/types"
)

func mockResource(name, payload string) *asset.Resource {
	return asset.NewResourceFromStream(name, strings.NewReader(payload))
}

func TestVec2Parser(t *testing.T) {
	expError := `unsupported syntax for "v"; expected 2 arguments; got 0`
	_, err := parseVec2([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	_, err = parseVec2([]string{"v", "not-a-float", "2"})
	if err == nil {
		t.Fatal("expected to get a parse error")
	}

	v, err := parseVec2([]string{"v", "3.14", "0"})
	if err != nil {
		t.Fatal(err)
	}

	expVal := types.Vec2{3.14, 0}
	if !reflect.DeepEqual(v, expVal) {
		t.Fatalf("expected parsed value to be %v; got %v", expVal, v)
	}
}

func TestVec3Parser(t *testing.T) {
	expError := `unsupported syntax for "v"; expected 3 arguments; got 0`
	_, err := parseVec3([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	v, err := parseVec3([]string{"v", "3.14", "0", "0.4"})
	if err != nil {
		t.Fatal(err)
	}

	expVal := types.Vec3{3.14, 0, 0.4}
	if !reflect.DeepEqual(v, expVal) {
		t.Fatalf("expected parsed value to be %v; got %v", expVal, v)
	}
}

func TestSelectFaceCoordinate(t *testing.T) {
	expError := "index out of bounds"
	type spec struct {
		in        string
		listLen   int
		relOffset int
		out       int
		expError  string
	}
	specs := []spec{
		{"2", 1, 0, -1, expError},
		{"-2", 1, 0, -1, expError},
		{"1", 10, 0, 0, ""}, // indices are 1-based
		{"-1", 10, 0, 9, ""},
		{"1", 10, 4, 4, ""},
	}

	for idx, s := range specs {
		v, err := selectFaceCoordIndex(s.in, s.listLen, s.relOffset)
		if s.expError != "" && (err == nil || err.Error() != s.expError) {
			t.Fatalf("[spec %d] expected error %s; got %v", idx, s.expError, err)
		} else if v != s.out {
			t.Fatalf("[spec %d] expected index to be %d; got %d", idx, s.out, v)
		}
	}
}

func TestParseQuadWithDefaultMaterial(t *testing.T) {
	payload := `
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
# Comment
f 1 2 3 4
o empty
`

	r := newWavefrontReader()
	sc, err := r.Read(mockResource("quad.obj", payload))
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Meshes) != 1 {
		t.Fatalf("expected empty mesh to be dropped; got %d meshes", len(sc.Meshes))
	}
	if len(sc.Meshes[0].Primitives) != 2 {
		t.Fatalf("expected quad to be split into 2 primitives; got %d", len(sc.Meshes[0].Primitives))
	}
	if len(sc.Nodes) != 1 || sc.Nodes[0].Mesh != 0 || len(sc.Roots) != 1 {
		t.Fatalf("expected a single root node instancing mesh 0")
	}
	if len(sc.Materials) != 1 || sc.Materials[0].BaseColor[0] != 0.7 {
		t.Fatalf("expected default material to be generated; got %v", sc.Materials)
	}

	prim := sc.Meshes[0].Primitives[0]
	expNormal := types.Vec3{0, 0, 1}
	if prim.HasNormals || !reflect.DeepEqual(prim.Normals[0], expNormal) {
		t.Fatalf("expected generated normal %v; got %v", expNormal, prim.Normals[0])
	}
}

func TestParseMaterialLibrary(t *testing.T) {
	dir := t.TempDir()
	mtl := `
newmtl light
Kd 0 0 0
Ke 4 4 4
newmtl red
Kd 0.8 0.1 0.1
`
	obj := `
mtllib scene.mtl
v 0 0 0
v 1 0 0
v 0 1 0
o lamp
usemtl light
f 1 2 3
o wall
usemtl red
f -3 -2 -1
`
	if err := os.WriteFile(filepath.Join(dir, "scene.mtl"), []byte(mtl), 0o644); err != nil {
		t.Fatal(err)
	}
	objPath := filepath.Join(dir, "scene.obj")
	if err := os.WriteFile(objPath, []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := ReadScene(objPath, Obj)
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Materials) != 2 {
		t.Fatalf("expected 2 used materials; got %d", len(sc.Materials))
	}
	lamp := sc.Materials[sc.Meshes[0].Primitives[0].MaterialIndex]
	if lamp.Name != "light" || lamp.Emissive[0] != 4 {
		t.Fatalf("expected lamp mesh to use the emissive material; got %+v", lamp)
	}
	wall := sc.Materials[sc.Meshes[1].Primitives[0].MaterialIndex]
	if wall.Name != "red" {
		t.Fatalf("expected wall mesh to use the red material; got %q", wall.Name)
	}
}

func TestParseErrors(t *testing.T) {
	type spec struct {
		payload  string
		expError string
	}
	specs := []spec{
		{"usemtl missing", `undefined material with name "missing"`},
		{"v 0 0 0\nf 1 2", `expected 3 arguments for triangular face`},
		{"v 0 0 0\nf 1 2 5", `index out of bounds`},
	}

	for index, s := range specs {
		_, err := newWavefrontReader().Read(mockResource("bad.obj", s.payload))
		if err == nil || !strings.Contains(err.Error(), s.expError) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expError, err)
		}
	}
}
