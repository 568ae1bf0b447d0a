/*
validator.go - Submission-time conflict checking

PURPOSE:
  Checks a proposed application against the employee's existing
  non-rejected applications on the same date before it is accepted as
  pending. Two complementary halves may coexist; everything else on an
  occupied date conflicts.

  This check is advisory: it does not guarantee balance sufficiency,
  which is re-checked at decision time (ledger.go).
*/
package leave

// CheckConflict validates the proposed leave type against the existing
// applications on the same date. Only non-rejected applications block.
//
// Rules:
//   - full conflicts with anything on the date
//   - a half conflicts with a full, or with the same half
//   - the opposite half may coexist
func CheckConflict(employeeID EmployeeID, date Date, proposed LeaveType, existing []*Application) *ConflictError {
	for _, app := range existing {
		if !app.CountsAgainstDate() || !app.Date.Equal(date) {
			continue
		}
		if proposed == LeaveFull || app.Type == LeaveFull || app.Type == proposed {
			return &ConflictError{
				EmployeeID: employeeID,
				Date:       date,
				Requested:  proposed,
				Existing:   app.Type,
				ExistingID: app.ID,
			}
		}
	}
	return nil
}
