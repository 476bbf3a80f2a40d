package relocate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shinji-kodama/buildlayout/internal/model"
)

// ConfigureFunc runs a subproject's configuration step. It receives the
// node with its output directory already computed and the immutable root
// output directory. Returning an error aborts the plan.
type ConfigureFunc func(ctx context.Context, node model.ProjectNode, root RootOutputDir) error

// Relocator plans the build-output layout of a build tree.
type Relocator struct {
	// OutputDirName is the name of the relocated root output directory.
	// Empty means model.DefaultOutputDirName.
	OutputDirName string

	// Configure, if set, is called for each subproject in evaluation order
	// right after its configuration is resolved.
	Configure ConfigureFunc
}

// NewRelocator creates a Relocator using the default output directory name.
func NewRelocator() *Relocator {
	return &Relocator{OutputDirName: model.DefaultOutputDirName}
}

// Plan relocates the root, orders the subprojects of g, then resolves each
// subproject's configuration in that order and computes its output
// directory.
//
// Any error aborts the plan and no layout is returned.
func (r *Relocator) Plan(ctx context.Context, rootPath string, g *Graph) (*model.Layout, error) {
	logger := zerolog.Ctx(ctx)

	dirName := r.OutputDirName
	if dirName == "" {
		dirName = model.DefaultOutputDirName
	}

	root, err := RelocateRootAs(rootPath, dirName)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("root", rootPath).Str("output_dir", root.String()).Msg("relocated root project")

	order, err := g.Order()
	if err != nil {
		return nil, err
	}
	logger.Debug().Strs("order", order).Msg("resolved evaluation order")

	layout := &model.Layout{
		RootPath:      rootPath,
		RootOutputDir: root.String(),
		Projects:      make([]model.ProjectNode, 0, len(order)),
	}

	evaluator := g.NewEvaluator()
	for _, name := range order {
		if err := evaluator.Resolve(name); err != nil {
			return nil, err
		}

		outputDir, err := RelocateSubproject(name, root)
		if err != nil {
			return nil, err
		}

		node := model.ProjectNode{
			Name:                name,
			Path:                g.Path(name),
			OutputDir:           outputDir,
			EvaluationDependsOn: g.Dependencies(name),
		}
		if r.Configure != nil {
			if err := r.Configure(ctx, node, root); err != nil {
				return nil, fmt.Errorf("configure subproject %q: %w", name, err)
			}
		}

		logger.Debug().Str("subproject", name).Str("output_dir", outputDir).Msg("relocated subproject")
		layout.Projects = append(layout.Projects, node)
	}
	layout.EvaluationOrder = evaluator.Resolved()

	return layout, nil
}
