package meadow

import (
	"fmt"

	"github.com/gekko3d/meadow/grassrt/core"
	"github.com/gekko3d/meadow/grassrt/noise"
	"github.com/gekko3d/meadow/grassrt/render"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type AssetId string

type AssetServer struct {
	meshes     map[AssetId]MeshAsset
	materials  map[AssetId]MaterialAsset
	heightmaps map[AssetId]HeightmapAsset
}

type AssetServerModule struct{}

type Mesh struct {
	assetId AssetId
}

func (m Mesh) Id() AssetId { return m.assetId }

type Material struct {
	assetId AssetId
}

func (m Material) Id() AssetId { return m.assetId }

type MeshAsset struct {
	version uint
	name    string
	bounds  core.AABB
}

type MaterialAsset struct {
	version uint
	name    string
}

type HeightmapAsset struct {
	version uint
	path    string
	field   *noise.Field
}

// LoadMesh registers a mesh by name with its local bounds. Loading the same
// name again replaces the asset and bumps its version.
func (server AssetServer) LoadMesh(name string, bounds core.AABB) Mesh {
	if id, ok := server.findMesh(name); ok {
		old := server.meshes[id]
		server.meshes[id] = MeshAsset{version: old.version + 1, name: name, bounds: bounds}
		return Mesh{assetId: id}
	}

	id := makeAssetId()
	server.meshes[id] = MeshAsset{
		version: 0,
		name:    name,
		bounds:  bounds,
	}
	return Mesh{
		assetId: id,
	}
}

func (server AssetServer) LoadMaterial(name string) Material {
	if id, ok := server.findMaterial(name); ok {
		old := server.materials[id]
		server.materials[id] = MaterialAsset{version: old.version + 1, name: name}
		return Material{assetId: id}
	}

	id := makeAssetId()
	server.materials[id] = MaterialAsset{
		version: 0,
		name:    name,
	}
	return Material{
		assetId: id,
	}
}

// LoadHeightmap decodes a BMP, TIFF or PNG heightmap covering the given
// world rectangle.
func (server AssetServer) LoadHeightmap(path string, worldMin, worldMax mgl32.Vec2, height float32) (AssetId, error) {
	field, err := noise.LoadImage(path, worldMin, worldMax, height)
	if err != nil {
		return "", err
	}
	id := makeAssetId()
	server.heightmaps[id] = HeightmapAsset{
		version: 0,
		path:    path,
		field:   field,
	}
	return id, nil
}

// AddHeightmap registers an already built field, such as baked noise.
func (server AssetServer) AddHeightmap(name string, field *noise.Field) AssetId {
	id := makeAssetId()
	server.heightmaps[id] = HeightmapAsset{path: name, field: field}
	return id
}

func (server AssetServer) Heightmap(id AssetId) (*noise.Field, bool) {
	hm, ok := server.heightmaps[id]
	if !ok {
		return nil, false
	}
	return hm.field, true
}

func (server AssetServer) FindMesh(name string) (Mesh, bool) {
	id, ok := server.findMesh(name)
	return Mesh{assetId: id}, ok
}

func (server AssetServer) FindMaterial(name string) (Material, bool) {
	id, ok := server.findMaterial(name)
	return Material{assetId: id}, ok
}

func (server AssetServer) findMesh(name string) (AssetId, bool) {
	for id, m := range server.meshes {
		if m.name == name {
			return id, true
		}
	}
	return "", false
}

func (server AssetServer) findMaterial(name string) (AssetId, bool) {
	for id, m := range server.materials {
		if m.name == name {
			return id, true
		}
	}
	return "", false
}

// Unload forgets an asset of any kind. Handles that already resolved it keep
// their copy until invalidated.
func (server AssetServer) Unload(id AssetId) {
	delete(server.meshes, id)
	delete(server.materials, id)
	delete(server.heightmaps, id)
}

// MeshHandle resolves the mesh called name when first drawn, so the asset may
// be loaded after the handle is created.
func (server AssetServer) MeshHandle(name string) *render.Handle[render.Mesh] {
	return render.NewHandle(func() (render.Mesh, error) {
		id, ok := server.findMesh(name)
		if !ok {
			return render.Mesh{}, fmt.Errorf("mesh %q: %w", name, render.ErrUnresolved)
		}
		m := server.meshes[id]
		return render.Mesh{ID: string(id), Name: m.name, Bounds: m.bounds}, nil
	})
}

func (server AssetServer) MaterialHandle(name string) *render.Handle[render.Material] {
	return render.NewHandle(func() (render.Material, error) {
		id, ok := server.findMaterial(name)
		if !ok {
			return render.Material{}, fmt.Errorf("material %q: %w", name, render.ErrUnresolved)
		}
		return render.Material{ID: string(id), Name: server.materials[id].name}, nil
	})
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&AssetServer{
		meshes:     make(map[AssetId]MeshAsset),
		materials:  make(map[AssetId]MaterialAsset),
		heightmaps: make(map[AssetId]HeightmapAsset),
	})
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
