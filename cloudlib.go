package pointmorph

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

type CloudId string

func makeCloudId() CloudId {
	return CloudId(uuid.NewString())
}

type CloudAsset struct {
	Name  string
	Cloud PointCloud
}

// CloudLibrary keeps the named shape variants in registration order. The
// order is the variant order the morph controller cycles through.
type CloudLibrary struct {
	clouds map[CloudId]CloudAsset
	order  []CloudId
}

func NewCloudLibrary() *CloudLibrary {
	return &CloudLibrary{
		clouds: map[CloudId]CloudAsset{},
	}
}

func (lib *CloudLibrary) Add(name string, cloud PointCloud) CloudId {
	id := makeCloudId()
	lib.clouds[id] = CloudAsset{Name: name, Cloud: cloud}
	lib.order = append(lib.order, id)
	return id
}

func (lib *CloudLibrary) Cloud(id CloudId) (CloudAsset, bool) {
	asset, ok := lib.clouds[id]
	return asset, ok
}

func (lib *CloudLibrary) Count() int {
	return len(lib.order)
}

// Variants returns the clouds in registration order.
func (lib *CloudLibrary) Variants() []PointCloud {
	variants := make([]PointCloud, 0, len(lib.order))
	for _, id := range lib.order {
		variants = append(variants, lib.clouds[id].Cloud)
	}
	return variants
}

func (lib *CloudLibrary) Names() []string {
	names := make([]string, 0, len(lib.order))
	for _, id := range lib.order {
		names = append(names, lib.clouds[id].Name)
	}
	return names
}

// CreateSphereCloud samples points uniformly on a sphere surface.
func (lib *CloudLibrary) CreateSphereCloud(name string, points int, radius float32, rng *rand.Rand) CloudId {
	positions := make([]float32, 0, points*3)
	for i := 0; i < points; i++ {
		cosTheta := 1 - 2*rng.Float32()
		sinTheta := math32.Sqrt(1 - cosTheta*cosTheta)
		phi := 2 * math32.Pi * rng.Float32()

		positions = append(positions,
			radius*sinTheta*math32.Cos(phi),
			radius*cosTheta,
			radius*sinTheta*math32.Sin(phi),
		)
	}
	return lib.Add(name, PointCloud{Positions: positions})
}

// CreateCubeCloud samples points uniformly inside an axis-aligned cube
// centered on the origin.
func (lib *CloudLibrary) CreateCubeCloud(name string, points int, size float32, rng *rand.Rand) CloudId {
	positions := make([]float32, 0, points*3)
	for i := 0; i < points; i++ {
		positions = append(positions,
			(rng.Float32()-0.5)*size,
			(rng.Float32()-0.5)*size,
			(rng.Float32()-0.5)*size,
		)
	}
	return lib.Add(name, PointCloud{Positions: positions})
}

// CreateTorusCloud samples the surface of a torus lying in the xz plane.
func (lib *CloudLibrary) CreateTorusCloud(name string, points int, majorRadius, minorRadius float32, rng *rand.Rand) CloudId {
	positions := make([]float32, 0, points*3)
	for i := 0; i < points; i++ {
		theta := 2 * math32.Pi * rng.Float32()
		phi := 2 * math32.Pi * rng.Float32()

		ring := majorRadius + minorRadius*math32.Cos(phi)
		positions = append(positions,
			ring*math32.Cos(theta),
			minorRadius*math32.Sin(phi),
			ring*math32.Sin(theta),
		)
	}
	return lib.Add(name, PointCloud{Positions: positions})
}

// CreateSpiralCloud builds a flat spiral galaxy: points spread over arms
// with gaussian jitter, thinning out toward the rim.
func (lib *CloudLibrary) CreateSpiralCloud(name string, points int, radius float32, arms int, rng *rand.Rand) CloudId {
	if arms < 1 {
		arms = 2
	}
	const twist = 2.5 * 2 * math32.Pi
	jitter := radius * 0.04

	positions := make([]float32, 0, points*3)
	for i := 0; i < points; i++ {
		t := rng.Float32()
		r := radius * math32.Sqrt(t)
		angle := t*twist + 2*math32.Pi*float32(i%arms)/float32(arms)

		positions = append(positions,
			r*math32.Cos(angle)+float32(rng.NormFloat64())*jitter,
			float32(rng.NormFloat64())*jitter,
			r*math32.Sin(angle)+float32(rng.NormFloat64())*jitter,
		)
	}
	return lib.Add(name, PointCloud{Positions: positions})
}

// CreateBlobCloud builds a gaussian ball with standard deviation sigma on
// every axis.
func (lib *CloudLibrary) CreateBlobCloud(name string, points int, sigma float32, rng *rand.Rand) CloudId {
	positions := make([]float32, 0, points*3)
	for i := 0; i < points; i++ {
		positions = append(positions,
			float32(rng.NormFloat64())*sigma,
			float32(rng.NormFloat64())*sigma,
			float32(rng.NormFloat64())*sigma,
		)
	}
	return lib.Add(name, PointCloud{Positions: positions})
}
