package app

import (
	"context"
	"runtime"

	"github.com/grindlemire/graft"
	"go.trai.ch/keel/internal/adapters/logger"
	"go.trai.ch/keel/internal/core/ports"
)

// NodeID is the graft catalog identifier for the App.
const NodeID graft.ID = "app.main"

func init() {
	graft.Register(graft.Node[*App]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*App, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log, runtime.NumCPU()), nil
		},
	})
}
