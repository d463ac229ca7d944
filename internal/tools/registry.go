package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"bilancio/internal/apierr"
	"bilancio/internal/log"
)

// Handler executes one named operation against raw JSON params.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Registry maps operation names to handlers. The set of operations is
// fixed at construction; Dispatch rejects unknown names.
type Registry struct {
	handlers map[string]Handler
	logger   *log.Logger
}

// NewRegistry registers every operation the service exposes.
func NewRegistry(s *Service) *Registry {
	r := &Registry{
		handlers: map[string]Handler{},
		logger:   log.New(log.Config{Component: log.ComponentTools}),
	}

	r.register("health_check", s.healthCheck)
	r.register("get_budgets", s.getBudgets)
	r.register("get_accounts", s.getAccounts)
	r.register("get_categories", s.getCategories)
	r.register("get_category", s.getCategory)
	r.register("get_budget_summary", s.getBudgetSummary)
	r.register("update_category", s.updateCategory)
	r.register("update_category_budget", s.updateCategoryBudget)
	r.register("move_category_funds", s.moveCategoryFunds)
	r.register("get_transactions", s.getTransactions)
	r.register("create_transaction", s.createTransaction)
	r.register("update_transaction", s.updateTransaction)
	r.register("get_unapproved_transactions", s.getUnapprovedTransactions)
	r.register("get_scheduled_transactions", s.getScheduledTransactions)
	r.register("create_scheduled_transaction", s.createScheduledTransaction)
	r.register("delete_scheduled_transaction", s.deleteScheduledTransaction)
	r.register("get_category_spending_summary", s.getCategorySpendingSummary)
	r.register("compare_spending_by_year", s.compareSpendingByYear)
	if s.exporter != nil {
		r.register("export_summary", s.exportSummary)
	}

	return r
}

func (r *Registry) register(name string, h Handler) {
	r.handlers[name] = h
}

// Names lists the registered operations in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the named operation. Unknown names and malformed
// params surface as validation errors without any network traffic.
func (r *Registry) Dispatch(ctx context.Context, name string, params json.RawMessage) (any, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, &apierr.Error{Kind: apierr.Validation, Detail: fmt.Sprintf("unknown tool %q", name)}
	}

	r.logger.DebugContext(ctx, "Dispatching tool", log.FieldTool, name)
	result, err := handler(ctx, params)
	if err != nil {
		r.logger.WarnContext(ctx, "Tool failed", log.FieldTool, name, log.FieldError, err.Error())
		return nil, err
	}
	return result, nil
}

// decodeParams unmarshals raw params into a typed struct, rejecting
// unknown fields so typos fail loudly instead of being ignored.
func decodeParams(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return &apierr.Error{Kind: apierr.Validation, Detail: "invalid params: " + err.Error()}
	}
	return nil
}

// badParams wraps a parameter problem as a validation error.
func badParams(err error) error {
	return &apierr.Error{Kind: apierr.Validation, Detail: err.Error()}
}
