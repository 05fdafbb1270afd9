// Package tessellate turns composite region tables into triangle meshes
// using a geometry kernel. One mesh is produced per table entry.
package tessellate

import (
	"fmt"

	"github.com/chazu/vertexgen/pkg/kernel"
	"github.com/chazu/vertexgen/pkg/region"
	log "github.com/sirupsen/logrus"
)

// Tessellate produces one mesh per entry of t, in table order. Each mesh
// covers the solid the entry samples: an inside-cap entry is meshed with
// its hole filled. The table is never mutated.
func Tessellate(t *region.Table, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if t == nil {
		return nil, nil
	}

	solids, err := t.Solids(k)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	meshes := make([]*kernel.Mesh, 0, len(solids))
	for i, s := range solids {
		label := t.Entry(i).Label()
		mesh, err := k.ToMesh(s)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %s entry %s: %w", t.Name(), label, err)
		}
		mesh.Region = t.Name()
		mesh.Entry = label
		log.WithFields(log.Fields{
			"region":    t.Name(),
			"entry":     label,
			"triangles": mesh.TriangleCount(),
		}).Debug("entry tessellated")
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// All tessellates several tables, concatenating their meshes.
func All(tables []*region.Table, k kernel.Kernel) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, t := range tables {
		collected, err := Tessellate(t, k)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}
