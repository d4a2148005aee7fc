package service

import (
	"errors"
	"strings"
	"testing"

	"eps-procurement/internal/apperr"
	"eps-procurement/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestValidateBudgetCodeFormat(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"plain", "CAPEX-2026", false},
		{"underscores", "IT_OPS_Q3", false},
		{"min length", "ABC", false},
		{"max length", strings.Repeat("A", 50), false},
		{"digits first", "2026-IT", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too short", "AB", true},
		{"too long", strings.Repeat("A", 51), true},
		{"leading hyphen", "-CAPEX", true},
		{"leading underscore", "_CAPEX", true},
		{"inner space", "CAPEX 2026", true},
		{"special chars", "CAPEX#2026", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBudgetCodeFormat(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateBudgetCodeFormat(%q) = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
			if err != nil && apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("error kind = %q, want validation", apperr.KindOf(err))
			}
		})
	}
}

func TestCheckRequirementDependenciesReportsCount(t *testing.T) {
	requirement := &model.Requirement{BaseModel: model.BaseModel{ID: uuid.New()}, RequirementCode: "REQ-100"}
	orderRepo := &fakeOrderRepo{}
	for i := 0; i < 3; i++ {
		orderRepo.orders = append(orderRepo.orders, model.EPSOrder{
			BaseModel:     model.BaseModel{ID: uuid.New()},
			RequirementID: requirement.ID,
		})
	}

	svc := NewIntegrityService(newFakeRequirementRepo(requirement), &fakeConfigurationRepo{}, orderRepo, newFakeSKURepo(), nil, nil)

	_, err := svc.CheckRequirementDependencies(requirement.ID)
	if err == nil {
		t.Fatal("expected error for requirement with dependent orders")
	}
	var e *apperr.Error
	if !errors.As(err, &e) {
		t.Fatalf("error %v is not an *apperr.Error", err)
	}
	if e.Kind != apperr.KindReferentialIntegrity {
		t.Errorf("kind = %q, want referential_integrity", e.Kind)
	}
	if e.DependentCount != 3 {
		t.Errorf("DependentCount = %d, want 3", e.DependentCount)
	}
}

func TestCheckRequirementDependenciesClean(t *testing.T) {
	requirement := &model.Requirement{BaseModel: model.BaseModel{ID: uuid.New()}, RequirementCode: "REQ-101"}
	svc := NewIntegrityService(newFakeRequirementRepo(requirement), &fakeConfigurationRepo{}, &fakeOrderRepo{}, newFakeSKURepo(), nil, nil)

	report, err := svc.CheckRequirementDependencies(requirement.ID)
	if err != nil {
		t.Fatalf("CheckRequirementDependencies() error = %v", err)
	}
	if report.HasDependencies || report.OrdersCount != 0 {
		t.Errorf("report = %+v, want no dependencies", report)
	}

	_, err = svc.CheckRequirementDependencies(uuid.New())
	if !apperr.IsNotFound(err) {
		t.Errorf("unknown requirement error = %v, want not_found", err)
	}
}

func TestCascadeDeleteCountsByCategory(t *testing.T) {
	requirement := &model.Requirement{BaseModel: model.BaseModel{ID: uuid.New()}, RequirementCode: "REQ-200"}
	reqRepo := newFakeRequirementRepo(requirement)

	configRepo := &fakeConfigurationRepo{}
	configA := newConfig(requirement.ID)
	configB := newConfig(requirement.ID)
	configRepo.configs = []model.Configuration{configA, configB}
	configRepo.items = []model.ConfigurationItem{
		newItem(configA.ID, uuid.New(), 1, "10.00"),
		newItem(configA.ID, uuid.New(), 2, "20.00"),
		newItem(configB.ID, uuid.New(), 3, "30.00"),
	}

	orderRepo := &fakeOrderRepo{}
	orderX := model.EPSOrder{BaseModel: model.BaseModel{ID: uuid.New()}, RequirementID: requirement.ID}
	orderY := model.EPSOrder{BaseModel: model.BaseModel{ID: uuid.New()}, RequirementID: requirement.ID}
	orderRepo.orders = []model.EPSOrder{orderX, orderY}
	orderRepo.items = []model.EPSOrderItem{
		{BaseModel: model.BaseModel{ID: uuid.New()}, OrderID: orderX.ID},
		{BaseModel: model.BaseModel{ID: uuid.New()}, OrderID: orderX.ID},
		{BaseModel: model.BaseModel{ID: uuid.New()}, OrderID: orderY.ID},
	}
	orderRepo.allocations = []model.BudgetAllocation{
		{BaseModel: model.BaseModel{ID: uuid.New()}, OrderID: orderX.ID, BudgetCode: "CAPEX-2026", Amount: decimal.Zero},
		{BaseModel: model.BaseModel{ID: uuid.New()}, OrderID: orderY.ID, BudgetCode: "CAPEX-2026", Amount: decimal.Zero},
	}

	svc := NewIntegrityService(reqRepo, configRepo, orderRepo, newFakeSKURepo(), nil, nil).(*integrityService)

	stats, err := svc.cascadeDelete(nil, requirement)
	if err != nil {
		t.Fatalf("cascadeDelete() error = %v", err)
	}

	want := DeletionStats{Orders: 2, OrderItems: 3, BudgetAllocations: 2, Configurations: 2, ConfigurationItems: 3}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}

	if got, _ := reqRepo.FindByID(requirement.ID); got != nil {
		t.Error("requirement still present after cascade")
	}
	if len(orderRepo.orders) != 0 || len(orderRepo.items) != 0 || len(orderRepo.allocations) != 0 {
		t.Error("order subtree not fully removed")
	}
	if len(configRepo.configs) != 0 || len(configRepo.items) != 0 {
		t.Error("configuration subtree not fully removed")
	}
}

func TestDeleteRequirementBlockedByOrders(t *testing.T) {
	requirement := &model.Requirement{BaseModel: model.BaseModel{ID: uuid.New()}, RequirementCode: "REQ-300"}
	orderRepo := &fakeOrderRepo{}
	for i := 0; i < 2; i++ {
		orderRepo.orders = append(orderRepo.orders, model.EPSOrder{
			BaseModel:     model.BaseModel{ID: uuid.New()},
			RequirementID: requirement.ID,
		})
	}

	svc := NewRequirementService(newFakeRequirementRepo(requirement), &fakeConfigurationRepo{}, orderRepo, newFakeSKURepo(), nil)

	err := svc.DeleteRequirement(requirement.ID)
	var e *apperr.Error
	if !errors.As(err, &e) {
		t.Fatalf("DeleteRequirement() error = %v, want *apperr.Error", err)
	}
	if e.Kind != apperr.KindReferentialIntegrity {
		t.Errorf("kind = %q, want referential_integrity", e.Kind)
	}
	if e.DependentCount != 2 {
		t.Errorf("DependentCount = %d, want 2", e.DependentCount)
	}
}

func TestVerifyRequirementSubtree(t *testing.T) {
	requirement := &model.Requirement{BaseModel: model.BaseModel{ID: uuid.New()}, RequirementCode: "REQ-001"}
	skuID := uuid.New()
	config := newConfig(requirement.ID)
	item := newItem(config.ID, skuID, 1, "10.00")
	order := model.EPSOrder{
		BaseModel:     model.BaseModel{ID: uuid.New()},
		OrderCode:     "EPS-REQ-001-DEL-20260831120000-0",
		RequirementID: requirement.ID,
	}

	configs := []model.Configuration{config}
	items := map[uuid.UUID][]model.ConfigurationItem{config.ID: {item}}
	orders := []model.EPSOrder{order}
	skuExists := map[uuid.UUID]bool{skuID: true}

	if err := verifyRequirementSubtree(requirement, configs, items, orders, skuExists); err != nil {
		t.Fatalf("consistent subtree rejected: %v", err)
	}

	t.Run("config points elsewhere", func(t *testing.T) {
		stray := config
		stray.RequirementID = uuid.New()
		err := verifyRequirementSubtree(requirement, []model.Configuration{stray}, items, nil, skuExists)
		if apperr.KindOf(err) != apperr.KindBusinessLogic {
			t.Errorf("err = %v, want business_logic", err)
		}
	})

	t.Run("item points elsewhere", func(t *testing.T) {
		strayItem := item
		strayItem.ConfigurationID = uuid.New()
		strayItems := map[uuid.UUID][]model.ConfigurationItem{config.ID: {strayItem}}
		err := verifyRequirementSubtree(requirement, configs, strayItems, nil, skuExists)
		if apperr.KindOf(err) != apperr.KindBusinessLogic {
			t.Errorf("err = %v, want business_logic", err)
		}
	})

	t.Run("missing SKU", func(t *testing.T) {
		err := verifyRequirementSubtree(requirement, configs, items, nil, map[uuid.UUID]bool{})
		if apperr.KindOf(err) != apperr.KindBusinessLogic {
			t.Errorf("err = %v, want business_logic", err)
		}
	})

	t.Run("order points elsewhere", func(t *testing.T) {
		strayOrder := order
		strayOrder.RequirementID = uuid.New()
		err := verifyRequirementSubtree(requirement, configs, items, []model.EPSOrder{strayOrder}, skuExists)
		if apperr.KindOf(err) != apperr.KindBusinessLogic {
			t.Errorf("err = %v, want business_logic", err)
		}
	})
}

func TestVerifyOrderSubtree(t *testing.T) {
	skuID := uuid.New()
	order := &model.EPSOrder{
		BaseModel:     model.BaseModel{ID: uuid.New()},
		OrderCode:     "EPS-REQ-001-HP-20260831120000-1",
		RequirementID: uuid.New(),
	}
	item := model.EPSOrderItem{
		BaseModel: model.BaseModel{ID: uuid.New()},
		OrderID:   order.ID,
		SKUID:     skuID,
	}
	alloc := model.BudgetAllocation{
		BaseModel:  model.BaseModel{ID: uuid.New()},
		OrderID:    order.ID,
		BudgetCode: "CAPEX-2026",
	}
	skuExists := map[uuid.UUID]bool{skuID: true}

	if err := verifyOrderSubtree(order, true, []model.EPSOrderItem{item}, []model.BudgetAllocation{alloc}, skuExists); err != nil {
		t.Fatalf("consistent subtree rejected: %v", err)
	}

	t.Run("missing requirement", func(t *testing.T) {
		err := verifyOrderSubtree(order, false, nil, nil, skuExists)
		if apperr.KindOf(err) != apperr.KindBusinessLogic {
			t.Errorf("err = %v, want business_logic", err)
		}
	})

	t.Run("item points elsewhere", func(t *testing.T) {
		strayItem := item
		strayItem.OrderID = uuid.New()
		err := verifyOrderSubtree(order, true, []model.EPSOrderItem{strayItem}, nil, skuExists)
		if apperr.KindOf(err) != apperr.KindBusinessLogic {
			t.Errorf("err = %v, want business_logic", err)
		}
	})

	t.Run("missing SKU", func(t *testing.T) {
		err := verifyOrderSubtree(order, true, []model.EPSOrderItem{item}, nil, map[uuid.UUID]bool{})
		if apperr.KindOf(err) != apperr.KindBusinessLogic {
			t.Errorf("err = %v, want business_logic", err)
		}
	})

	t.Run("allocation points elsewhere", func(t *testing.T) {
		strayAlloc := alloc
		strayAlloc.OrderID = uuid.New()
		err := verifyOrderSubtree(order, true, nil, []model.BudgetAllocation{strayAlloc}, skuExists)
		if apperr.KindOf(err) != apperr.KindBusinessLogic {
			t.Errorf("err = %v, want business_logic", err)
		}
	})
}
