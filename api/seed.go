/*
seed.go - Sample data loader for demos and local development

PURPOSE:
  Loads a small, recognizable dataset: four employees in different
  departments with varied vacation usage, their manager, and the standing
  blackout calendar for the current year. Idempotent: re-seeding upserts
  the same records.
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/policy"
)

type sampleEmployee struct {
	emp         leave.Employee
	usedVacDays int
}

func sampleEmployees(now time.Time) []sampleEmployee {
	mgr := "MGR001"
	started := func(yearsAgo int) time.Time { return now.AddDate(-yearsAgo, 0, 0) }
	return []sampleEmployee{
		{
			emp: leave.Employee{
				ID: "MGR001", Name: "Robert Chen", Email: "robert.chen@company.com",
				Department: "Engineering", Position: "Engineering Manager",
				StartDate: started(8), AnnualQuotaDays: 25, IsManager: true,
			},
		},
		{
			emp: leave.Employee{
				ID: "EMP001", Name: "John Smith", Email: "john.smith@company.com",
				Department: "Engineering", Position: "Developer", ManagerID: &mgr,
				StartDate: started(5), AnnualQuotaDays: 20,
			},
			usedVacDays: 6, // 14 days remaining
		},
		{
			emp: leave.Employee{
				ID: "EMP002", Name: "Jane Doe", Email: "jane.doe@company.com",
				Department: "Marketing", Position: "Specialist", ManagerID: &mgr,
				StartDate: started(3), AnnualQuotaDays: 20,
			},
			usedVacDays: 5, // 15 days remaining
		},
		{
			emp: leave.Employee{
				ID: "EMP003", Name: "Bob Johnson", Email: "bob.johnson@company.com",
				Department: "Finance", Position: "Analyst", ManagerID: &mgr,
				StartDate: started(2), AnnualQuotaDays: 20,
			},
			usedVacDays: 10, // 10 days remaining
		},
		{
			emp: leave.Employee{
				ID: "EMP004", Name: "Alice Williams", Email: "alice.williams@company.com",
				Department: "HR", Position: "Coordinator", ManagerID: &mgr,
				StartDate: started(1), AnnualQuotaDays: 10,
			},
		},
	}
}

// SeedSampleData loads the sample employees and the current year's standing
// blackout windows.
// POST /api/admin/seed
func (h *Handler) SeedSampleData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()

	if err := h.seedEmployees(ctx, now); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed employees", err)
		return
	}

	for _, b := range policy.DefaultBlackoutPeriods(now.Year()) {
		if err := h.Store.SaveBlackout(ctx, b); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed blackout periods", err)
			return
		}
	}

	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}

	h.Log.Info("sample data seeded")
	writeJSON(w, http.StatusCreated, dtos)
}

func (h *Handler) seedEmployees(ctx context.Context, now time.Time) error {
	for _, s := range sampleEmployees(now) {
		if err := h.Store.SaveEmployee(ctx, s.emp); err != nil {
			return err
		}
		accrued := leave.HoursFromDays(s.emp.AnnualQuotaDays)
		used := leave.HoursFromDays(s.usedVacDays)
		if err := h.Store.SetBalance(ctx, s.emp.ID, leave.TypeVacation, accrued, used); err != nil {
			return err
		}
		if err := h.Store.SetBalance(ctx, s.emp.ID, leave.TypeSick,
			leave.HoursFromDays(leave.SickQuotaDays), leave.Hours{}); err != nil {
			return err
		}
	}
	return nil
}
