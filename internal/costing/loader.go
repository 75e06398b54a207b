package costing

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/genka-erp/genka-erp/internal/allocation"
	"github.com/genka-erp/genka-erp/internal/bom"
	"github.com/genka-erp/genka-erp/internal/budget"
	"github.com/genka-erp/genka-erp/internal/masterdata/costcenters"
	"github.com/genka-erp/genka-erp/internal/masterdata/crudeproducts"
	"github.com/genka-erp/genka-erp/internal/masterdata/materials"
	"github.com/genka-erp/genka-erp/internal/masterdata/products"
	"github.com/genka-erp/genka-erp/internal/masterdata/shared"
	"github.com/genka-erp/genka-erp/internal/periods"
)

// Loader assembles the input snapshot for one run. Master data, BOMs,
// budgets and rules are read once here; the engine works off the copy.
type Loader struct {
	materials     materials.Repository
	crudeProducts crudeproducts.Repository
	products      products.Repository
	costCenters   costcenters.Repository
	boms          bom.Repository
	budgets       budget.Repository
	rules         allocation.Repository
}

func NewLoader(
	materialRepo materials.Repository,
	crudeProductRepo crudeproducts.Repository,
	productRepo products.Repository,
	costCenterRepo costcenters.Repository,
	bomRepo bom.Repository,
	budgetRepo budget.Repository,
	ruleRepo allocation.Repository,
) *Loader {
	return &Loader{
		materials:     materialRepo,
		crudeProducts: crudeProductRepo,
		products:      productRepo,
		costCenters:   costCenterRepo,
		boms:          bomRepo,
		budgets:       budgetRepo,
		rules:         ruleRepo,
	}
}

// Load builds the snapshot for a period. Recipes resolve against the
// period's start date so the run sees the versions in force when the
// period opened.
func (l *Loader) Load(ctx context.Context, period periods.Period) (Snapshot, error) {
	snap := Snapshot{PeriodID: period.ID}

	// The reads are independent, so fan them out. Each goroutine writes
	// only its own snapshot field.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		materialList, err := l.materials.ListActive(gctx)
		if err != nil {
			return fmt.Errorf("load materials: %w", err)
		}
		snap.Materials = make(map[int64]materials.Material, len(materialList))
		for _, m := range materialList {
			snap.Materials[m.ID] = m
		}
		return nil
	})

	g.Go(func() error {
		crudeList, err := l.crudeProducts.ListActive(gctx)
		if err != nil {
			return fmt.Errorf("load crude products: %w", err)
		}
		snap.CrudeProducts = make(map[int64]crudeproducts.CrudeProduct, len(crudeList))
		for _, cp := range crudeList {
			snap.CrudeProducts[cp.ID] = cp
		}
		return nil
	})

	g.Go(func() error {
		productList, err := l.products.ListActive(gctx)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		snap.Products = make(map[int64]products.Product, len(productList))
		for _, p := range productList {
			snap.Products[p.ID] = p
		}
		return nil
	})

	g.Go(func() error {
		resolver := bom.NewResolver(l.boms)
		var err error
		if snap.CrudeBOMs, err = resolver.ResolveAll(gctx, bom.TypeRawMaterialProcess, period.StartDate); err != nil {
			return fmt.Errorf("resolve crude product boms: %w", err)
		}
		if snap.ProductBOMs, err = resolver.ResolveAll(gctx, bom.TypeProductProcess, period.StartDate); err != nil {
			return fmt.Errorf("resolve product boms: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		if snap.Rules, err = l.rules.ListActive(gctx); err != nil {
			return fmt.Errorf("load allocation rules: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	loadBudget := func(centerType costcenters.CenterType) (int64, *budget.CostBudget, error) {
		center, err := l.costCenters.GetByType(ctx, centerType)
		if errors.Is(err, shared.ErrNotFound) {
			return 0, nil, nil
		}
		if err != nil {
			return 0, nil, err
		}
		b, err := l.budgets.Find(ctx, center.ID, period.ID)
		if errors.Is(err, budget.ErrNotFound) {
			return center.ID, nil, nil
		}
		if err != nil {
			return 0, nil, err
		}
		return center.ID, &b, nil
	}

	var err error
	if snap.ManufacturingCenterID, snap.ManufacturingBudget, err = loadBudget(costcenters.TypeManufacturing); err != nil {
		return Snapshot{}, fmt.Errorf("load manufacturing budget: %w", err)
	}
	if snap.ProductCenterID, snap.ProductBudget, err = loadBudget(costcenters.TypeProduct); err != nil {
		return Snapshot{}, fmt.Errorf("load product budget: %w", err)
	}

	return snap, nil
}
