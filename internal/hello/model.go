package hello

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/plus3/helloxr/internal/config"
	"github.com/plus3/helloxr/scene"
)

// modelFile is the on-disk form of a model: a named root and a flat list of parts.
// A part's parent names another part; empty means the root.
type modelFile struct {
	Name  string      `toml:"name"`
	Parts []modelPart `toml:"parts"`
}

type modelPart struct {
	Name     string      `toml:"name"`
	Parent   string      `toml:"parent"`
	Shape    string      `toml:"shape"`
	Size     config.Vec3 `toml:"size"`
	Position config.Vec3 `toml:"position"`
	Diffuse  string      `toml:"diffuse"`
}

// ModelImporter reads TOML model files.
type ModelImporter struct {
	// Root overrides the transform of the imported root node.
	Root scene.Transform
}

func (m ModelImporter) Import(ctx context.Context, path string) ([]scene.EntitySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var f modelFile
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&f); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	specs := make([]scene.EntitySpec, 0, len(f.Parts)+1)
	specs = append(specs, scene.EntitySpec{Name: f.Name, Kind: scene.KindNode, Components: []any{m.Root}})
	for _, p := range f.Parts {
		shape, err := partShape(p)
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", p.Name, err)
		}
		diffuse := scene.White()
		if p.Diffuse != "" {
			if diffuse, err = scene.ParseColor3(p.Diffuse); err != nil {
				return nil, fmt.Errorf("part %q: %w", p.Name, err)
			}
		}
		parent := p.Parent
		if parent == "" {
			parent = f.Name
		}
		specs = append(specs, scene.EntitySpec{
			Name:   p.Name,
			Kind:   scene.KindMesh,
			Parent: parent,
			Components: []any{
				scene.NewTransform(p.Position.Vector3()),
				shape,
				scene.Material{Name: p.Name + " material", Diffuse: diffuse},
			},
		})
	}
	return specs, nil
}

func partShape(p modelPart) (scene.Shape, error) {
	size := p.Size.Vector3()
	var kind scene.ShapeKind
	switch p.Shape {
	case "", "box":
		kind = scene.ShapeBox
	case "sphere":
		kind = scene.ShapeSphere
	case "plane":
		kind = scene.ShapePlane
	case "ground":
		kind = scene.ShapeGround
	default:
		return scene.Shape{}, fmt.Errorf("unknown shape %q", p.Shape)
	}
	if size.X < 0 || size.Y < 0 || size.Z < 0 {
		return scene.Shape{}, fmt.Errorf("negative size %v", p.Size)
	}
	return scene.Shape{Kind: kind, Size: size}, nil
}
