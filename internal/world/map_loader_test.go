package world

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"raycaster/internal/geometry"
)

const legacyMap = `{
	"version": 1,
	"width": 3,
	"height": 3,
	"cubeSize": 32,
	"cells": [[1,1,1],[1,0,5],[1,1,1]],
	"playerStart": [48, 48],
	"playerStartDir": [0, -1]
}`

func TestReadMap_Legacy(t *testing.T) {
	m, err := ReadMap(strings.NewReader(legacyMap))
	if err != nil {
		t.Fatalf("read legacy map: %v", err)
	}
	if m.Width() != 3 || m.Height() != 3 || m.CellSize() != 32 {
		t.Fatalf("unexpected size %dx%d cs=%d", m.Width(), m.Height(), m.CellSize())
	}
	if c, _ := m.At(CellCoord{X: 1, Y: 1}); c != EmptyCell {
		t.Fatalf("expected floor at centre, got %+v", c)
	}
	if c, _ := m.At(CellCoord{X: 2, Y: 1}); c != WallCell(5) {
		t.Fatalf("expected wall texture 5, got %+v", c)
	}
	pos, dir := m.PlayerStart()
	if pos != geometry.V(48, 48) || dir != geometry.V(0, -1) {
		t.Fatalf("unexpected start %v %v", pos, dir)
	}
}

func TestMapFile_RoundTrip(t *testing.T) {
	m, err := ReadMap(strings.NewReader(legacyMap))
	if err != nil {
		t.Fatalf("read legacy map: %v", err)
	}
	if err := m.Set(CellCoord{X: 0, Y: 0}, Cell{Passable: false, Visible: true, TextureID: 63}); err != nil {
		t.Fatalf("set cell: %v", err)
	}

	path := filepath.Join(t.TempDir(), "nested", "room.map")
	if err := m.SaveFile(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Contains(data, []byte(`"version":2`)) {
		t.Fatalf("saved map is not version 2: %s", data)
	}

	loaded, err := LoadMapFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.CellSize() != 32 {
		t.Fatalf("cell size lost: %d", loaded.CellSize())
	}
	want, got := m.Cells(), loaded.Cells()
	for y := range want {
		for x := range want[y] {
			if want[y][x] != got[y][x] {
				t.Fatalf("cell %d,%d: want %+v got %+v", x, y, want[y][x], got[y][x])
			}
		}
	}
	wantPos, wantDir := m.PlayerStart()
	gotPos, gotDir := loaded.PlayerStart()
	if wantPos != gotPos || wantDir != gotDir {
		t.Fatalf("player start lost: %v %v", gotPos, gotDir)
	}
}

func TestReadMap_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"version", `{"version":3,"cubeSize":64,"cells":[[0]]}`, ErrUnsupportedVersion},
		{"cube size", `{"version":2,"cubeSize":0,"cells":[[0]]}`, ErrInvalidMap},
		{"empty", `{"version":2,"cubeSize":64,"cells":[]}`, ErrInvalidMap},
		{"ragged", `{"version":1,"cubeSize":64,"cells":[[0,0],[0]]}`, ErrInvalidMap},
		{"byte range", `{"version":2,"cubeSize":64,"cells":[[256]]}`, ErrInvalidMap},
		{"negative legacy", `{"version":1,"cubeSize":64,"cells":[[-1]]}`, ErrInvalidMap},
		{"declared size", `{"version":2,"width":4,"cubeSize":64,"cells":[[0]]}`, ErrInvalidMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMap(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := ReadMap(strings.NewReader("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile_KeepsMapOnError(t *testing.T) {
	m := NewMap(ConstructBaseMap(), 64)
	before := m.Cells()

	if err := m.LoadFile(filepath.Join(t.TempDir(), "missing.map")); err == nil {
		t.Fatal("expected error for missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.map")
	if err := os.WriteFile(bad, []byte(`{"version":9}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := m.LoadFile(bad); err == nil {
		t.Fatal("expected error for bad version")
	}

	after := m.Cells()
	if len(after) != len(before) || m.Width() != 8 || m.CellSize() != 64 {
		t.Fatalf("map changed after failed load: %dx%d", m.Width(), m.Height())
	}
}

func TestFindDataDir(t *testing.T) {
	root := t.TempDir()
	data := filepath.Join(root, "data")
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(data, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := FindDataDir(deep); got != deep {
		t.Fatalf("without marker expected %s, got %s", deep, got)
	}

	if err := os.WriteFile(filepath.Join(data, "rcdata.conf"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got := FindDataDir(deep)
	if resolved, _ := filepath.EvalSymlinks(got); resolved != mustEval(t, data) {
		t.Fatalf("expected %s, got %s", data, got)
	}
	if p := MapPath(got, "level1"); filepath.Base(p) != "level1.map" || filepath.Base(filepath.Dir(p)) != "maps" {
		t.Fatalf("unexpected map path %s", p)
	}
}

func mustEval(t *testing.T, p string) string {
	t.Helper()
	r, err := filepath.EvalSymlinks(p)
	if err != nil {
		t.Fatal(err)
	}
	return r
}
