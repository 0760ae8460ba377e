package model

import "fmt"

// IntegrityError reports normalized data that violates a model invariant.
// It is fatal for the single object it names: extraction skips the object
// with a warning and continues.
type IntegrityError struct {
	Object string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("model integrity: %s: %s", e.Object, e.Reason)
}

// NewForeignKey validates and builds a foreign key. The local and target
// column lists must be non-empty and of equal length.
func NewForeignKey(name string, columns []string, target Identifier, targetColumns []string, onDelete, onUpdate RefAction) (ForeignKey, error) {
	if len(columns) == 0 {
		return ForeignKey{}, &IntegrityError{Object: name, Reason: "foreign key has no columns"}
	}
	if len(columns) != len(targetColumns) {
		return ForeignKey{}, &IntegrityError{
			Object: name,
			Reason: fmt.Sprintf("foreign key pairs %d local columns with %d target columns", len(columns), len(targetColumns)),
		}
	}
	if onDelete == "" {
		onDelete = ActionNoAction
	}
	if onUpdate == "" {
		onUpdate = ActionNoAction
	}
	return ForeignKey{
		Name:          name,
		Columns:       columns,
		Target:        target,
		TargetColumns: targetColumns,
		OnDelete:      onDelete,
		OnUpdate:      onUpdate,
	}, nil
}

// ValidateTable checks the table-level invariants: column ordinals are
// contiguous starting at 1, and primary key columns are a subset of the
// declared columns.
func ValidateTable(t *Table) error {
	if len(t.Columns) == 0 {
		return &IntegrityError{Object: t.ID.String(), Reason: "table has no columns"}
	}
	byName := make(map[string]bool, len(t.Columns))
	for i, c := range t.Columns {
		if c.Ordinal != i+1 {
			return &IntegrityError{
				Object: t.ID.String(),
				Reason: fmt.Sprintf("column %q has ordinal %d, want %d", c.Name, c.Ordinal, i+1),
			}
		}
		byName[c.Name] = true
	}
	if pk := t.PrimaryKey; pk != nil {
		if len(pk.Columns) == 0 {
			return &IntegrityError{Object: t.ID.String(), Reason: "primary key has no columns"}
		}
		for _, c := range pk.Columns {
			if !byName[c] {
				return &IntegrityError{
					Object: t.ID.String(),
					Reason: fmt.Sprintf("primary key column %q is not a declared column", c),
				}
			}
		}
	}
	return nil
}
