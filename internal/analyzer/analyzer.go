package analyzer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jacobarthurs/mysqlplan/internal/logging"
	"github.com/jacobarthurs/mysqlplan/internal/plan"
	"github.com/jacobarthurs/mysqlplan/internal/schema"
)

type Options struct {
	Logger       *zap.Logger
	Concurrency  int
	FetchTimeout time.Duration
}

// Analyze builds the node tree for output, fetches metadata for its tables from
// provider and diagnoses every node. provider may be nil, in which case only
// metadata-independent rules produce issues. The only error is
// plan.ErrNoPlanAvailable.
func Analyze(ctx context.Context, output plan.ExplainOutput, provider schema.Provider, opts Options) (Result, error) {
	root, err := plan.Build(output)
	if err != nil {
		return Result{}, err
	}

	runID := uuid.NewString()
	logger := logging.OrNop(opts.Logger).With(zap.String("run_id", runID))

	tables := plan.ExtractTables(output)
	cache := schema.Enrich(ctx, tables, provider, schema.EnrichOptions{
		Concurrency:  opts.Concurrency,
		FetchTimeout: opts.FetchTimeout,
		Logger:       logger,
	})

	Diagnose(root, cache)

	missing := cache.Missing(tables)
	if len(missing) > 0 {
		logger.Info("Analyzed with partial metadata",
			zap.Strings("missing_tables", missing),
			zap.Int("tables", len(tables)))
	}

	return Result{
		RunID:           runID,
		Root:            root,
		Tables:          tables,
		MissingTables:   missing,
		PartialMetadata: len(missing) > 0,
	}, nil
}

// Diagnose assigns severity and issues to the root query node and every table
// access node. cache may be nil. Previous diagnoses are replaced.
func Diagnose(root *plan.Node, cache *schema.Cache) {
	if root == nil {
		return
	}

	if v, ok := classifyQueryCost(root); ok {
		root.Severity, root.Issues = v.Severity, v.Issues
	}

	root.Walk(func(node *plan.Node) {
		if node.Kind != plan.KindTableAccess {
			return
		}
		meta, _ := cache.Get(node.Table)
		node.Severity, node.Issues = applyRules(node, meta, defaultRules)
	})
}

// applyRules folds rule verdicts in order. Severity only ever moves up.
func applyRules(node *plan.Node, meta *schema.TableMetadata, rules []Rule) (plan.Severity, []string) {
	rc := &RuleContext{Metadata: meta}
	severity := plan.SeverityNone

	for _, rule := range rules {
		v, ok := rule(node, rc)
		if !ok {
			continue
		}
		severity = max(severity, v.Severity)
		rc.Issues = append(rc.Issues, v.Issues...)
	}

	return severity, rc.Issues
}
