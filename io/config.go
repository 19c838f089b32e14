/*package io reads instrument configuration files and the raw mesh
arrays they reference, and assembles them into traceable optics. The
core tracing packages never touch files; everything on disk goes
through here.
*/
package io

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/gcfg.v1"
)

const ExampleConfigFile = `[Main]

# Ordered list of Optic section names. Rays from the sources are traced
# through these optics one after another.
Optics = mirror detector

# Optional log file. Rotated automatically once it grows large.
# LogFile = goxrt.log
# LogLevel = debug

[Source "beam"]

# Center of the source aperture and the point the collimated bundle is
# aimed at. All vectors are three whitespace-separated numbers.
Origin = 0.0 0.0 0.0
Aim    = 0.0 0.0 1.0

# Aperture extent and the ray grid across it.
Width  = 0.01
Height = 0.01
NX = 50
NY = 50

# Carried through to the optical response stage untouched.
Wavelength = 1.5406e-10

[Optic "mirror"]

Origin = 0.0 0.0 1.0
ZAxis  = 0.0 0.0 -1.0
# XAxis is optional. Without it a default x-axis is derived from ZAxis.
# XAxis = 1.0 0.0 0.0

# With UseMeshgrid unset the optic is a flat plane. With it set, the
# surface comes from the mesh tables below: vertex and face tables are
# required, the normal table is optional.
UseMeshgrid = true
MeshVertexFile = mirror_vertices.dat
MeshFaceFile   = mirror_faces.dat
MeshNormalFile = mirror_normals.dat

# Smooth normals interpolated from the vertex normal table. Silently
# disabled when MeshNormalFile is not given.
MeshInterpolate = true

# Coarse companion mesh for two-level intersection refinement.
# MeshRefine defaults to true exactly when coarse tables are given; set
# it to false to force exhaustive testing against the full mesh.
CoarseVertexFile = mirror_coarse_vertices.dat
CoarseFaceFile   = mirror_coarse_faces.dat
# MeshRefine = true

[Optic "detector"]

Origin = 0.0 0.0 0.0
ZAxis  = 0.0 0.0 1.0
`

// Config is the top-level layout of a goxrt config file.
type Config struct {
	Main   MainConfig
	Source map[string]*SourceConfig
	Optic  map[string]*OpticConfig
}

type MainConfig struct {
	Optics   string
	LogFile  string
	LogLevel string
}

// OpticNames returns the optic chain in trace order.
func (main *MainConfig) OpticNames() []string {
	return strings.Fields(main.Optics)
}

type SourceConfig struct {
	Origin     string
	Aim        string
	Width      float64
	Height     float64
	NX, NY     int
	Wavelength float64

	name        string
	origin, aim r3.Vec
}

func (src *SourceConfig) CheckInit(name string) error {
	var err error
	if src.origin, err = ParseVec(src.Origin); err != nil {
		return fmt.Errorf("Origin of Source '%s': %s", name, err.Error())
	}
	if src.aim, err = ParseVec(src.Aim); err != nil {
		return fmt.Errorf("Aim of Source '%s': %s", name, err.Error())
	}
	if src.aim == src.origin {
		return fmt.Errorf("Source '%s' is aimed at its own origin.", name)
	}
	if src.Width < 0 || src.Height < 0 {
		return fmt.Errorf("Source '%s' given a negative aperture size.", name)
	}

	if src.NX == 0 {
		src.NX = 1
	}
	if src.NY == 0 {
		src.NY = 1
	}
	if src.NX < 0 || src.NY < 0 {
		return fmt.Errorf("Source '%s' given a negative ray count.", name)
	}

	src.name = name
	return nil
}

type OpticConfig struct {
	Origin string
	ZAxis  string
	XAxis  string

	UseMeshgrid     bool
	MeshInterpolate bool
	// MeshRefine is a tri-state flag: "true", "false", or empty, which
	// resolves to true exactly when a coarse mesh is configured.
	MeshRefine string

	MeshVertexFile string
	MeshFaceFile   string
	MeshNormalFile string

	CoarseVertexFile string
	CoarseFaceFile   string
	CoarseNormalFile string

	name          string
	origin, zaxis r3.Vec
	xaxis         r3.Vec
	hasXAxis      bool
	refine        bool
}

func (opt *OpticConfig) CheckInit(name string) error {
	var err error
	if opt.origin, err = ParseVec(opt.Origin); err != nil {
		return fmt.Errorf("Origin of Optic '%s': %s", name, err.Error())
	}
	if opt.zaxis, err = ParseVec(opt.ZAxis); err != nil {
		return fmt.Errorf("ZAxis of Optic '%s': %s", name, err.Error())
	}
	if r3.Norm(opt.zaxis) == 0 {
		return fmt.Errorf("ZAxis of Optic '%s' has zero length.", name)
	}
	if opt.hasXAxis = opt.XAxis != ""; opt.hasXAxis {
		if opt.xaxis, err = ParseVec(opt.XAxis); err != nil {
			return fmt.Errorf("XAxis of Optic '%s': %s", name, err.Error())
		}
	}

	if opt.UseMeshgrid {
		if opt.MeshVertexFile == "" || opt.MeshFaceFile == "" {
			return fmt.Errorf(
				"Optic '%s' sets UseMeshgrid but is missing "+
					"MeshVertexFile or MeshFaceFile.", name,
			)
		}
	}

	hasCoarse := opt.CoarseVertexFile != ""
	switch opt.MeshRefine {
	case "":
		opt.refine = hasCoarse
	case "true":
		opt.refine = true
	case "false":
		opt.refine = false
	default:
		return fmt.Errorf(
			"MeshRefine of Optic '%s' must be 'true' or 'false', not '%s'.",
			name, opt.MeshRefine,
		)
	}
	if opt.refine && (!hasCoarse || opt.CoarseFaceFile == "") {
		return fmt.Errorf(
			"Optic '%s' needs CoarseVertexFile and CoarseFaceFile "+
				"for mesh refinement.", name,
		)
	}

	opt.name = name
	return nil
}

// Refine reports whether the optic traces through the two-level
// refinement pipeline, after tri-state resolution by CheckInit.
func (opt *OpticConfig) Refine() bool { return opt.refine }

// ReadConfig parses and validates a config file.
func ReadConfig(file string) (*Config, error) {
	cfg := &Config{}
	if err := gcfg.ReadFileInto(cfg, file); err != nil {
		return nil, err
	}
	return cfg, cfg.checkInit()
}

// ReadConfigString parses and validates config text directly.
func ReadConfigString(text string) (*Config, error) {
	cfg := &Config{}
	if err := gcfg.ReadStringInto(cfg, text); err != nil {
		return nil, err
	}
	return cfg, cfg.checkInit()
}

func (cfg *Config) checkInit() error {
	if len(cfg.Source) == 0 {
		return fmt.Errorf("Config defines no Source sections.")
	}
	for name, src := range cfg.Source {
		if err := src.CheckInit(name); err != nil {
			return err
		}
	}
	for name, opt := range cfg.Optic {
		if err := opt.CheckInit(name); err != nil {
			return err
		}
	}

	names := cfg.Main.OpticNames()
	if len(names) == 0 {
		return fmt.Errorf("Main.Optics lists no optics.")
	}
	for _, name := range names {
		if _, ok := cfg.Optic[name]; !ok {
			return fmt.Errorf(
				"Main.Optics lists '%s', but there is no such Optic section.",
				name,
			)
		}
	}
	return nil
}

// SourceNames returns the source section names in deterministic order.
func (cfg *Config) SourceNames() []string {
	names := make([]string, 0, len(cfg.Source))
	for name := range cfg.Source {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseVec parses a 3-vector given as three whitespace-separated
// numbers.
func ParseVec(text string) (r3.Vec, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return r3.Vec{}, fmt.Errorf(
			"expected three components, got %d", len(fields),
		)
	}
	var xs [3]float64
	for i, field := range fields {
		var err error
		if xs[i], err = strconv.ParseFloat(field, 64); err != nil {
			return r3.Vec{}, fmt.Errorf("component %d: %s", i, err.Error())
		}
	}
	return r3.Vec{X: xs[0], Y: xs[1], Z: xs[2]}, nil
}
