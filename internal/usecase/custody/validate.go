package custody

import "asset-custody/internal/domain/assignment"

func invalid(field, reason string) error {
	return &assignment.ValidationError{Field: field, Reason: reason}
}

func validateCreate(in CreateInput) error {
	switch {
	case in.EmployeeRef == "":
		return invalid("employee_ref", "is required")
	case in.AssetRef == "":
		return invalid("asset_ref", "is required")
	case in.AssignedDate.IsZero():
		return invalid("assigned_date", "is required")
	case !in.ConditionAtAssignment.Valid():
		return invalid("condition_at_assignment", "must be one of new, excellent, good, fair, poor")
	case in.AssignmentType != "" && !in.AssignmentType.Valid():
		return invalid("assignment_type", "must be one of permanent, temporary, project_based, pool")
	case in.WarrantyMonths < 0:
		return invalid("warranty_months", "must not be negative")
	}
	if in.IndefiniteAssignment {
		return nil
	}
	if in.ExpectedReturnDate == nil {
		return invalid("expected_return_date", "is required unless indefinite_assignment is set")
	}
	if assignment.Day(*in.ExpectedReturnDate).Before(assignment.Day(in.AssignedDate)) {
		return invalid("expected_return_date", "must not precede assigned_date")
	}
	return nil
}
