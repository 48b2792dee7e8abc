package reader

import (
	"path/filepath"
	"strings"

	"github.com/achilleasa/polaris-bvh/asset"
	"github.com/achilleasa/polaris-bvh/bvh"
	"github.com/pkg/errors"
)

// A named range of triangles ("g" or "o" statements in wavefront files).
type Group struct {
	Name   string
	Offset int
	Count  int
}

// Mesh holds the triangle soup loaded from a mesh file.
type Mesh struct {
	Triangles []bvh.Triangle
	Groups    []Group
}

// The Reader interface is implemented by all mesh readers.
type Reader interface {
	// Read mesh from a resource.
	Read(*asset.Resource) (*Mesh, error)
}

// Read mesh from a local file or URL. The reader is selected based on the
// file extension.
func ReadMesh(filename string) (*Mesh, error) {
	var reader Reader
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".obj":
		reader = newWavefrontReader()
	default:
		return nil, errors.Errorf("reader: unsupported mesh format %q", filepath.Ext(filename))
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}
