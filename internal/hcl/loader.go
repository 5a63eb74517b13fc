package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/hazgridgo/internal/config"
	"github.com/specialistvlad/hazgridgo/internal/ctxlog"
	"github.com/specialistvlad/hazgridgo/internal/fsutil"
	"github.com/specialistvlad/hazgridgo/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL job loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file under the given paths, merges their
// blocks, translates them into the format-agnostic model, and validates
// the result.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(".hcl", paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found under %v", paths)
	}
	logger.Debug("Discovered job files.", "count", len(files))

	parser := hclparse.NewParser()
	merged := &schema.Job{}
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %s", file, diags.Error())
		}
		var job schema.Job
		diags = gohcl.DecodeBody(hclFile.Body, nil, &job)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %s", file, diags.Error())
		}
		merged.Calculations = append(merged.Calculations, job.Calculations...)
		if job.SiteCollection != nil {
			if merged.SiteCollection != nil {
				return nil, fmt.Errorf("duplicate site_collection block in %s", file)
			}
			merged.SiteCollection = job.SiteCollection
		}
		merged.Sources = append(merged.Sources, job.Sources...)
		merged.LogicTrees = append(merged.LogicTrees, job.LogicTrees...)
	}

	model, err := l.translate(merged)
	if err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Job loading complete.",
		"calculation", model.Calculation.Name,
		"sources", len(model.Sources),
		"sm_branch_sets", len(model.SourceModelTree.BranchSets),
		"gmpe_branch_sets", len(model.GMPETree.BranchSets))
	return model, nil
}
