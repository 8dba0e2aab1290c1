package portal

import (
	"errors"
	"fmt"
)

// SceneLoad is the pending model load. The loader goroutine writes the
// channel; only sceneLoadSystem on the main thread reads it.
type SceneLoad struct {
	Path    string
	pending <-chan LoadResult
	done    bool
	err     error
}

func NewSceneLoad(path string, pending <-chan LoadResult) *SceneLoad {
	return &SceneLoad{Path: path, pending: pending}
}

func (l *SceneLoad) Done() bool { return l.done }

// Err is the load failure, if the load resolved with one.
func (l *SceneLoad) Err() error { return l.err }

type SceneModule struct{}

func (SceneModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(sceneLoadSystem).
			InStage(PreUpdate),
	)
}

func sceneLoadSystem(load *SceneLoad, scene *Scene, materials *Materials, cmd *Commands) {
	if load.done {
		return
	}

	var res LoadResult
	select {
	case r, ok := <-load.pending:
		if !ok {
			r = LoadResult{Err: errors.New("loader finished without a result")}
		}
		res = r
	default:
		return
	}
	load.done = true
	load.err = res.Err

	if err := OnModelLoaded(res, scene, materials, cmd.Logger()); err != nil {
		msg := fmt.Sprintf("assemble %s: %v", load.Path, err)
		cmd.Logger().Errorf("%s", msg)
		panic(msg)
	}
}

// OnModelLoaded is the completion handler for the model load. A failed load
// is logged and absorbed so the rest of the scene keeps rendering; a loaded
// asset that does not match the expected structure is returned as an error.
func OnModelLoaded(res LoadResult, scene *Scene, materials *Materials, logger Logger) error {
	if res.Err != nil {
		logger.Errorf("model load failed: %v", res.Err)
		return nil
	}
	if err := Assemble(res.Root, materials); err != nil {
		return err
	}
	scene.Add(res.Root)
	logger.Infof("model attached with %d top-level nodes", len(res.Root.Children))
	return nil
}
