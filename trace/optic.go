package trace

import (
	"go.uber.org/zap"

	"github.com/npickett/goxrt/geom"
)

// Optic ties a coordinate frame to a tracing strategy. Tracing runs in
// the optic's local frame: the batch is transformed in, handed to the
// strategy, and transformed back out along with the resolved normals,
// so callers only ever see external coordinates.
type Optic struct {
	name   string
	frame  *geom.Frame
	tracer Tracer
	log    *zap.Logger
}

func NewOptic(name string, frame *geom.Frame, tracer Tracer, log *zap.Logger) *Optic {
	return &Optic{name: name, frame: frame, tracer: tracer, log: log}
}

func (o *Optic) Name() string       { return o.name }
func (o *Optic) Frame() *geom.Frame { return o.frame }

// Trace intersects the batch with this optic. Ray origins are replaced
// by hit points, the mask narrows to actual hits, and Result.Normals
// holds external-frame unit normals for the response stage.
func (o *Optic) Trace(rays *geom.RayBatch) *Result {
	o.frame.RaysToLocal(rays)
	res := o.tracer.Trace(rays)
	o.frame.RaysToExternal(rays)
	o.frame.VectorsToExternal(res.Normals)

	o.log.Debug("rays on optic",
		zap.String("optic", o.name),
		zap.Int("active", rays.ActiveCount()),
	)
	return res
}
