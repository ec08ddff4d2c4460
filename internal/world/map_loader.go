package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"raycaster/internal/geometry"
)

const (
	// MapFormatLegacy stores one integer per cell: 0 floor, N wall with texture N.
	MapFormatLegacy = 1
	// MapFormatPacked stores one packed byte per cell, see Cell.Pack.
	MapFormatPacked = 2

	// MapFileExt is the file extension of persisted maps.
	MapFileExt = ".map"

	dataMarker  = "rcdata.conf"
	dataDirName = "data"
	mapsDirName = "maps"
)

// ErrUnsupportedVersion is returned for map files with an unknown version tag.
var ErrUnsupportedVersion = errors.New("unsupported map version")

// mapFile is the persisted JSON form of a Map.
type mapFile struct {
	Version        int        `json:"version"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	CubeSize       int        `json:"cubeSize"`
	Cells          [][]int    `json:"cells"`
	PlayerStart    [2]float64 `json:"playerStart"`
	PlayerStartDir [2]float64 `json:"playerStartDir"`
}

// MarshalJSON always writes the packed (version 2) format.
func (m *Map) MarshalJSON() ([]byte, error) {
	f := mapFile{
		Version:        MapFormatPacked,
		Width:          m.Width(),
		Height:         m.Height(),
		CubeSize:       m.cellSize,
		Cells:          make([][]int, len(m.cells)),
		PlayerStart:    [2]float64{m.playerStart.X, m.playerStart.Y},
		PlayerStartDir: [2]float64{m.playerStartDir.X, m.playerStartDir.Y},
	}
	for y, row := range m.cells {
		out := make([]int, len(row))
		for x, c := range row {
			out[x] = int(c.Pack())
		}
		f.Cells[y] = out
	}
	return json.Marshal(f)
}

// UnmarshalJSON decodes version 1 and version 2 map files. On error the map
// is left unchanged.
func (m *Map) UnmarshalJSON(data []byte) error {
	var f mapFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse map: %w", err)
	}
	decoded, err := decodeMapFile(f)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

func decodeMapFile(f mapFile) (*Map, error) {
	var decode func(v int) (Cell, error)
	switch f.Version {
	case MapFormatLegacy:
		decode = func(v int) (Cell, error) {
			if v < 0 {
				return Cell{}, fmt.Errorf("negative legacy cell value %d", v)
			}
			return CellFromLegacy(v), nil
		}
	case MapFormatPacked:
		decode = func(v int) (Cell, error) {
			if v < 0 || v > 0xff {
				return Cell{}, fmt.Errorf("packed cell value %d out of byte range", v)
			}
			return UnpackCell(uint8(v)), nil
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}

	if f.CubeSize <= 0 {
		return nil, fmt.Errorf("%w: cubeSize %d", ErrInvalidMap, f.CubeSize)
	}

	cells := make([][]Cell, len(f.Cells))
	for y, row := range f.Cells {
		cells[y] = make([]Cell, len(row))
		for x, v := range row {
			c, err := decode(v)
			if err != nil {
				return nil, fmt.Errorf("%w: cell %d,%d: %v", ErrInvalidMap, x, y, err)
			}
			cells[y][x] = c
		}
	}

	m := NewMap(cells, f.CubeSize)
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: grid is empty or ragged", ErrInvalidMap)
	}
	if (f.Width != 0 && f.Width != m.Width()) || (f.Height != 0 && f.Height != m.Height()) {
		return nil, fmt.Errorf("%w: declared size %dx%d, grid is %dx%d",
			ErrInvalidMap, f.Width, f.Height, m.Width(), m.Height())
	}
	m.SetPlayerStart(
		geometry.V(f.PlayerStart[0], f.PlayerStart[1]),
		geometry.V(f.PlayerStartDir[0], f.PlayerStartDir[1]),
	)
	return m, nil
}

// ReadMap decodes a map file from r.
func ReadMap(r io.Reader) (*Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	m := &Map{}
	if err := m.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadMapFile reads the map stored at path.
func LoadMapFile(path string) (*Map, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map file %s: %w", path, err)
	}
	defer file.Close()

	m, err := ReadMap(file)
	if err != nil {
		return nil, fmt.Errorf("map file %s: %w", path, err)
	}
	return m, nil
}

// LoadFile replaces the map content with the file at path. On any error,
// including a missing file, the map keeps its previous content.
func (m *Map) LoadFile(path string) error {
	loaded, err := LoadMapFile(path)
	if err != nil {
		return err
	}
	*m = *loaded
	return nil
}

// Write encodes the map in the packed format.
func (m *Map) Write(w io.Writer) error {
	data, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode map: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write map: %w", err)
	}
	return nil
}

// SaveFile writes the map to path, creating parent directories as needed.
func (m *Map) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create map directory: %w", err)
	}
	data, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode map: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save map file %s: %w", path, err)
	}
	return nil
}

// FindDataDir looks for a "data" directory holding an rcdata.conf marker in
// start or any of its parents. When none is found, start is returned.
func FindDataDir(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	for {
		candidate := filepath.Join(dir, dataDirName)
		if _, err := os.Stat(filepath.Join(candidate, dataMarker)); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// MapsDir returns the directory holding the maps of a data directory.
func MapsDir(dataDir string) string {
	return filepath.Join(dataDir, mapsDirName)
}

// MapPath returns the location of the named map inside a data directory.
func MapPath(dataDir, name string) string {
	return filepath.Join(MapsDir(dataDir), name+MapFileExt)
}
