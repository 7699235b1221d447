package eventbus

import (
	"context"
	"encoding/json"

	"github.com/annel0/voxelcore/internal/logging"
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world"
	"github.com/annel0/voxelcore/internal/world/block"
)

// Типы событий рендера.
const (
	EventVoxelAdded    = "VoxelAdded"
	EventVisibilitySet = "VisibilitySet"

	renderSource  = "world"
	renderVersion = 1
)

// VoxelAddedPayload полезная нагрузка EventVoxelAdded.
type VoxelAddedPayload struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	Type string `json:"type"`
}

// VisibilitySetPayload полезная нагрузка EventVisibilitySet.
type VisibilitySetPayload struct {
	ChunkX  int   `json:"chunk_x"`
	ChunkZ  int   `json:"chunk_z"`
	X       uint8 `json:"x"`
	Y       uint8 `json:"y"`
	Z       uint8 `json:"z"`
	Exposed bool  `json:"exposed"`
}

// RenderPublisher реализует world.Renderer, публикуя события в шину.
// Вызовы приходят под блокировкой WorldManager, поэтому подписчики
// не должны синхронно обращаться к миру из обработчика.
type RenderPublisher struct {
	bus      EventBus
	priority int
	logger   *logging.Logger
}

var _ world.Renderer = (*RenderPublisher)(nil)

// NewRenderPublisher создаёт издателя. События публикуются с PriorityHigh:
// при заполненном буфере генерация ждёт, а не теряет воксели.
func NewRenderPublisher(bus EventBus) *RenderPublisher {
	return &RenderPublisher{
		bus:      bus,
		priority: PriorityHigh,
		logger:   logging.GetEventBusLogger(),
	}
}

func (p *RenderPublisher) AddVoxel(worldPos vec.Vec3, t block.Type) {
	p.publish(EventVoxelAdded, VoxelAddedPayload{
		X: worldPos.X, Y: worldPos.Y, Z: worldPos.Z,
		Type: t.String(),
	})
}

func (p *RenderPublisher) SetVisible(chunk vec.Vec2, rel vec.RelPos, exposed bool) {
	p.publish(EventVisibilitySet, VisibilitySetPayload{
		ChunkX: chunk.X, ChunkZ: chunk.Z,
		X: rel.X, Y: rel.Y, Z: rel.Z,
		Exposed: exposed,
	})
}

func (p *RenderPublisher) publish(eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("marshal %s: %v", eventType, err)
		return
	}
	ev := &Envelope{
		Source:    renderSource,
		EventType: eventType,
		Version:   renderVersion,
		Priority:  p.priority,
		Payload:   data,
	}
	if err := p.bus.Publish(context.Background(), ev); err != nil {
		p.logger.Warn("publish %s: %v", eventType, err)
	}
}
